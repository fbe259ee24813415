package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/repositories"
	"codechat-service/internal/telemetry"
)

// SnippetHandler manages saved-snippet endpoints.
type SnippetHandler struct {
	snippetRepo repositories.SnippetRepository
	audit       *telemetry.AuditEmitter
}

// NewSnippetHandler constructs a SnippetHandler.
func NewSnippetHandler(snippetRepo repositories.SnippetRepository, audit *telemetry.AuditEmitter) *SnippetHandler {
	return &SnippetHandler{snippetRepo: snippetRepo, audit: audit}
}

// ListSnippets returns the caller's snippets, newest first.
func (h *SnippetHandler) ListSnippets(c *gin.Context) {
	userID := c.GetInt("userID")

	snippets, err := h.snippetRepo.ListSnippets(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snippets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snippets": snippets})
}

// CreateSnippet saves a new snippet for the caller.
func (h *SnippetHandler) CreateSnippet(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	snippet, err := h.snippetRepo.CreateSnippet(c.Request.Context(), userID, req.Title, req.Code)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save snippet"})
		return
	}

	h.emitAudit(c, "INFO", "Snippet saved")
	c.JSON(http.StatusCreated, snippet)
}

// GetSnippet returns one snippet owned by the caller.
func (h *SnippetHandler) GetSnippet(c *gin.Context) {
	snippetID, err := strconv.Atoi(c.Param("snippet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snippet id"})
		return
	}

	userID := c.GetInt("userID")
	snippet, err := h.snippetRepo.GetSnippet(c.Request.Context(), snippetID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSnippetNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "snippet not found"})
		return
	}

	c.JSON(http.StatusOK, snippet)
}

// UpdateSnippet updates code and/or cached output of an owned snippet.
func (h *SnippetHandler) UpdateSnippet(c *gin.Context) {
	snippetID, err := strconv.Atoi(c.Param("snippet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snippet id"})
		return
	}

	var req struct {
		Code       *string `json:"code"`
		LastOutput *string `json:"last_output"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Code == nil && req.LastOutput == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	userID := c.GetInt("userID")
	snippet, err := h.snippetRepo.UpdateSnippet(c.Request.Context(), snippetID, userID, req.Code, req.LastOutput)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSnippetNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update snippet"})
		return
	}

	c.JSON(http.StatusOK, snippet)
}

// DeleteSnippet removes an owned snippet.
func (h *SnippetHandler) DeleteSnippet(c *gin.Context) {
	snippetID, err := strconv.Atoi(c.Param("snippet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snippet id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.snippetRepo.DeleteSnippet(c.Request.Context(), snippetID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSnippetNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete snippet"})
		return
	}

	h.emitAudit(c, "INFO", "Snippet deleted")
	c.Status(http.StatusNoContent)
}

func (h *SnippetHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
