package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codechat-service/internal/models"
	"codechat-service/internal/observability"
)

// Hub maintains active websocket rooms: one global room for the group
// channel and one room per direct-message pair.
type Hub struct {
	groupConns map[*websocket.Conn]ConnInfo
	dmRooms    map[string]map[*websocket.Conn]ConnInfo
	mu         sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		groupConns: make(map[*websocket.Conn]ConnInfo),
		dmRooms:    make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddGroupClient registers a websocket connection to the group channel.
func (h *Hub) AddGroupClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groupConns[conn] = info
}

// RemoveGroupClient removes a group channel connection.
func (h *Hub) RemoveGroupClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groupConns, conn)
}

// AddDMClient registers a websocket connection to a direct-message room.
func (h *Hub) AddDMClient(userA, userB int, conn *websocket.Conn, info ConnInfo) {
	key := pairKey(userA, userB)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.dmRooms[key]; !ok {
		h.dmRooms[key] = make(map[*websocket.Conn]ConnInfo)
	}
	h.dmRooms[key][conn] = info
}

// RemoveDMClient removes a direct-message connection.
func (h *Hub) RemoveDMClient(userA, userB int, conn *websocket.Conn) {
	key := pairKey(userA, userB)
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.dmRooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.dmRooms, key)
		}
	}
}

// BroadcastGroupMessage sends a new message to every group channel client.
func (h *Hub) BroadcastGroupMessage(msg models.GroupMessage) {
	h.broadcastGroup(models.GroupEvent{Type: "message", Message: &msg})
}

// BroadcastGroupUpdate notifies clients of an edited message.
func (h *Hub) BroadcastGroupUpdate(msg models.GroupMessage) {
	h.broadcastGroup(models.GroupEvent{Type: "message_updated", Message: &msg})
}

// BroadcastGroupDeletion notifies clients of a deleted message.
func (h *Hub) BroadcastGroupDeletion(messageID int) {
	h.broadcastGroup(models.GroupEvent{Type: "message_deleted", MessageID: messageID})
}

func (h *Hub) broadcastGroup(event models.GroupEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.groupConns))
	for conn := range h.groupConns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishGroupError(conn, err)
			h.RemoveGroupClient(conn)
		}
	}
}

// BroadcastDMMessage sends a new direct message to both participants.
func (h *Hub) BroadcastDMMessage(msg models.DirectMessage) {
	h.broadcastDM(msg.SenderID, msg.ReceiverID, models.DMEvent{Type: "message", Message: &msg})
}

// BroadcastDMUpdate notifies participants of an edited direct message.
func (h *Hub) BroadcastDMUpdate(msg models.DirectMessage) {
	h.broadcastDM(msg.SenderID, msg.ReceiverID, models.DMEvent{Type: "message_updated", Message: &msg})
}

// BroadcastDMDeletion notifies participants of a deleted direct message.
func (h *Hub) BroadcastDMDeletion(userA, userB, messageID int) {
	h.broadcastDM(userA, userB, models.DMEvent{Type: "message_deleted", MessageID: messageID})
}

func (h *Hub) broadcastDM(userA, userB int, event models.DMEvent) {
	key := pairKey(userA, userB)
	h.mu.RLock()
	room := h.dmRooms[key]
	conns := make([]*websocket.Conn, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishDMError(key, userA, userB, conn, err)
			h.RemoveDMClient(userA, userB, conn)
		}
	}
}

func (h *Hub) publishGroupError(conn *websocket.Conn, err error) {
	h.mu.RLock()
	info, ok := h.groupConns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	publishWSEvent(context.Background(), "group", "", "ws_error", info, err.Error())
	observability.IncWSEvent("group", "ws_error")
}

func (h *Hub) publishDMError(key string, userA, userB int, conn *websocket.Conn, err error) {
	h.mu.RLock()
	info, ok := h.dmRooms[key][conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	publishWSEvent(context.Background(), "dm", key, "ws_error", info, err.Error())
	observability.IncWSEvent("dm", "ws_error")
}

// publishWSEvent emits one websocket lifecycle event to the event bus.
func publishWSEvent(ctx context.Context, kind, room, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"room":        room,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}

func wsRoutingKey(kind string) string {
	if kind == "dm" {
		return "ws_events.dms"
	}
	return "ws_events.group"
}
