package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/models"
	"codechat-service/internal/repositories"
	"codechat-service/internal/telemetry"
	"codechat-service/internal/ws"
)

// messagePayload is the shared body shape for group and direct messages.
// Text and code are independently optional; at least one must be present.
type messagePayload struct {
	Text         *string `json:"text"`
	CodeContent  *string `json:"code_content"`
	CodeLanguage *string `json:"code_language"`
}

// normalize blanks out empty fields so that a code-only message stores a
// NULL text column, and rejects payloads carrying neither text nor code.
func (p *messagePayload) normalize() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		p.Text = nil
	}
	if p.CodeContent != nil && *p.CodeContent == "" {
		p.CodeContent = nil
	}
	if p.CodeContent == nil {
		p.CodeLanguage = nil
	}
	if p.Text == nil && p.CodeContent == nil {
		return errors.New("message requires text or code")
	}
	return nil
}

// GroupHandler manages the global group channel endpoints.
type GroupHandler struct {
	messageRepo repositories.GroupMessageRepository
	profileRepo repositories.ProfileRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(messageRepo repositories.GroupMessageRepository, profileRepo repositories.ProfileRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		hub:         hub,
		audit:       audit,
	}
}

// ListGroupMessages returns the whole channel history in order.
func (h *GroupHandler) ListGroupMessages(c *gin.Context) {
	msgs, err := h.messageRepo.ListGroupMessages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	nameByID := map[int]string{}
	if len(senderIDs) > 0 {
		profiles, err := h.profileRepo.BulkProfiles(c.Request.Context(), senderIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
			return
		}
		for _, p := range profiles {
			nameByID[p.ID] = p.DisplayName
		}
	}

	type messageResponse struct {
		models.GroupMessage
		SenderDisplayName string `json:"sender_display_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{GroupMessage: m, SenderDisplayName: nameByID[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostGroupMessage persists and broadcasts a channel message.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	var req messagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.CreateGroupMessage(c.Request.Context(), userID, req.Text, req.CodeContent, req.CodeLanguage)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastGroupMessage(msg)
	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, msg)
}

// UpdateGroupMessageCode replaces the code of a message; author only.
func (h *GroupHandler) UpdateGroupMessageCode(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		CodeContent string `json:"code_content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messageRepo.GetGroupMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to edit message")
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may edit"})
		return
	}

	updated, err := h.messageRepo.UpdateCodeContent(c.Request.Context(), messageID, userID, req.CodeContent)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update message"})
		return
	}

	h.hub.BroadcastGroupUpdate(updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteGroupMessage removes a message; author only.
func (h *GroupHandler) DeleteGroupMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messageRepo.GetGroupMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to delete message")
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may delete"})
		return
	}

	if err := h.messageRepo.DeleteGroupMessage(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.hub.BroadcastGroupDeletion(messageID)
	h.emitAudit(c, "INFO", "Group message deleted")
	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
