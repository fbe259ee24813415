package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"codechat-service/internal/observability"
)

// TokenValidator verifies an access token and returns the user id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

// GroupWebSocketHandler handles group channel websocket connections.
type GroupWebSocketHandler struct {
	hub       *Hub
	validator TokenValidator
}

// NewGroupWebSocketHandler constructs a GroupWebSocketHandler.
func NewGroupWebSocketHandler(hub *Hub, validator TokenValidator) *GroupWebSocketHandler {
	return &GroupWebSocketHandler{hub: hub, validator: validator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the global room.
func (h *GroupWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("codechat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := validateWSToken(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddGroupClient(conn, info)

	observability.IncWSActive("group")
	observability.IncWSEvent("group", "ws_connect")
	publishWSEvent(ctx, "group", "", "ws_connect", info, "")

	go readLoop(ctx, conn, info, "group", "", func() {
		h.hub.RemoveGroupClient(conn)
		observability.DecWSActive("group")
	})
}

// readLoop keeps the connection alive and cleans up on close. The clients
// never send application payloads; reads only surface close and error
// conditions.
func readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo, kind, room string, remove func()) {
	var closeReason string
	defer func() {
		remove()
		observability.IncWSEvent(kind, "ws_disconnect")
		publishWSEvent(ctx, kind, room, "ws_disconnect", info, closeReason)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(kind, "ws_error")
				publishWSEvent(ctx, kind, room, "ws_error", info, closeReason)
			}
			return
		}
	}
}

func validateWSToken(c *gin.Context, validator TokenValidator) (int, error) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}
	parts := strings.Split(token, " ")
	if len(parts) == 2 {
		return validator.ValidateToken(c.Request.Context(), parts[1])
	}
	return 0, fmt.Errorf("invalid token")
}
