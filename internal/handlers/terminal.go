package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/observability"
	"codechat-service/internal/telemetry"
	"codechat-service/internal/terminal"
)

// TerminalHandler manages simulated interactive terminal sessions.
type TerminalHandler struct {
	manager *terminal.Manager
	audit   *telemetry.AuditEmitter
}

// NewTerminalHandler constructs a TerminalHandler.
func NewTerminalHandler(manager *terminal.Manager, audit *telemetry.AuditEmitter) *TerminalHandler {
	return &TerminalHandler{manager: manager, audit: audit}
}

// StartSession runs the code once; if it reads stdin a session is opened
// and the response carries its id.
func (h *TerminalHandler) StartSession(c *gin.Context) {
	var req struct {
		Code   string `json:"code" binding:"required"`
		Engine string `json:"engine"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	step, err := h.manager.Start(c.Request.Context(), userID, req.Code, req.Engine)
	if err != nil {
		if errors.Is(err, terminal.ErrUnknownEngine) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.emitAudit(c, "ERROR", "Terminal run failed upstream")
		c.JSON(http.StatusBadGateway, gin.H{"error": "execution service unavailable"})
		return
	}

	observability.SetTerminalSessions(h.manager.Count())
	h.emitAudit(c, "INFO", "Terminal session started")
	c.JSON(http.StatusCreated, step)
}

// SubmitInput feeds one stdin line into a live session.
func (h *TerminalHandler) SubmitInput(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req struct {
		Line string `json:"line"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	step, err := h.manager.SubmitInput(c.Request.Context(), sessionID, userID, req.Line)
	if err != nil {
		if errors.Is(err, terminal.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.emitAudit(c, "ERROR", "Terminal run failed upstream")
		c.JSON(http.StatusBadGateway, gin.H{"error": "execution service unavailable"})
		return
	}

	c.JSON(http.StatusOK, step)
}

// CloseSession drops a live session.
func (h *TerminalHandler) CloseSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	userID := c.GetInt("userID")
	if err := h.manager.Close(sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	observability.SetTerminalSessions(h.manager.Count())
	c.Status(http.StatusNoContent)
}

func (h *TerminalHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
