package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codechat-service/internal/repositories"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo}
}

// UpsertProfile creates or updates the caller's profile.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name" binding:"required"`
		AvatarGlyph string `json:"avatar_glyph"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	profile, err := h.profileRepo.UpsertProfile(c.Request.Context(), userID, req.DisplayName, req.AvatarGlyph)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfile returns another user's public profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profile, err := h.profileRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
