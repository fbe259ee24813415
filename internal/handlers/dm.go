package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/models"
	"codechat-service/internal/repositories"
	"codechat-service/internal/telemetry"
	"codechat-service/internal/ws"
)

// DMHandler manages direct-message endpoints. Every query is scoped to
// the authenticated caller, so messages between other users stay invisible.
type DMHandler struct {
	dmRepo      repositories.DirectMessageRepository
	profileRepo repositories.ProfileRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewDMHandler constructs a DMHandler.
func NewDMHandler(dmRepo repositories.DirectMessageRepository, profileRepo repositories.ProfileRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *DMHandler {
	return &DMHandler{
		dmRepo:      dmRepo,
		profileRepo: profileRepo,
		hub:         hub,
		audit:       audit,
	}
}

// ListConversations returns the caller's conversation partners with display names.
func (h *DMHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	convs, err := h.dmRepo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	partnerIDs := make([]int, 0, len(convs))
	for _, conv := range convs {
		partnerIDs = append(partnerIDs, conv.PartnerID)
	}

	nameByID := map[int]string{}
	if len(partnerIDs) > 0 {
		profiles, err := h.profileRepo.BulkProfiles(c.Request.Context(), partnerIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load partners"})
			return
		}
		for _, p := range profiles {
			nameByID[p.ID] = p.DisplayName
		}
	}

	type conversationResponse struct {
		models.Conversation
		PartnerDisplayName string `json:"partner_display_name,omitempty"`
	}

	resp := make([]conversationResponse, 0, len(convs))
	for _, conv := range convs {
		resp = append(resp, conversationResponse{Conversation: conv, PartnerDisplayName: nameByID[conv.PartnerID]})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": resp})
}

// GetConversation returns the ordered messages between the caller and a partner.
func (h *DMHandler) GetConversation(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	msgs, err := h.dmRepo.ListConversation(c.Request.Context(), userID, partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostDirectMessage stores a message to a partner and notifies the DM room.
func (h *DMHandler) PostDirectMessage(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if partnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}

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

	msg, err := h.dmRepo.CreateDirectMessage(c.Request.Context(), userID, partnerID, req.Text, req.CodeContent, req.CodeLanguage)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastDMMessage(msg)
	h.emitAudit(c, "INFO", "Direct message sent")
	c.JSON(http.StatusCreated, msg)
}

// UpdateDirectMessageCode replaces the code of a direct message; author only.
func (h *DMHandler) UpdateDirectMessageCode(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
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
	msg, err := h.dmRepo.GetDirectMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if !messageInConversation(msg, userID, partnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to edit message")
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may edit"})
		return
	}

	updated, err := h.dmRepo.UpdateCodeContent(c.Request.Context(), messageID, userID, req.CodeContent)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update message"})
		return
	}

	h.hub.BroadcastDMUpdate(updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteDirectMessage removes a direct message; author only.
func (h *DMHandler) DeleteDirectMessage(c *gin.Context) {
	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.dmRepo.GetDirectMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if !messageInConversation(msg, userID, partnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to delete message")
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may delete"})
		return
	}

	if err := h.dmRepo.DeleteDirectMessage(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.hub.BroadcastDMDeletion(userID, partnerID, messageID)
	h.emitAudit(c, "INFO", "Direct message deleted")
	c.Status(http.StatusNoContent)
}

// messageInConversation reports whether msg belongs to the userID/partnerID pair.
func messageInConversation(msg models.DirectMessage, userID, partnerID int) bool {
	return (msg.SenderID == userID && msg.ReceiverID == partnerID) ||
		(msg.SenderID == partnerID && msg.ReceiverID == userID)
}

func (h *DMHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
