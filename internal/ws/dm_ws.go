package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"codechat-service/internal/observability"
)

// DMWebSocketHandler handles direct-message websocket connections.
type DMWebSocketHandler struct {
	hub       *Hub
	validator TokenValidator
}

// NewDMWebSocketHandler constructs a DMWebSocketHandler.
func NewDMWebSocketHandler(hub *Hub, validator TokenValidator) *DMWebSocketHandler {
	return &DMWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and joins the room for the conversation
// between the caller and the partner named in the path. The caller is by
// construction a participant, so no further membership check is needed.
func (h *DMWebSocketHandler) Handle(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, span := otel.Tracer("codechat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := validateWSToken(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if partnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open a conversation with yourself"})
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
	h.hub.AddDMClient(userID, partnerID, conn, info)

	room := pairKey(userID, partnerID)
	observability.IncWSActive("dm")
	observability.IncWSEvent("dm", "ws_connect")
	publishWSEvent(ctx, "dm", room, "ws_connect", info, "")

	go readLoop(ctx, conn, info, "dm", room, func() {
		h.hub.RemoveDMClient(userID, partnerID, conn)
		observability.DecWSActive("dm")
	})
}
