package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codechat-service/internal/mocks"
	"codechat-service/internal/models"
	"codechat-service/internal/repositories"
)

func setupProfileRouter(handler *ProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.PUT("/profile", handler.UpsertProfile)
	r.GET("/profile/:user_id", handler.GetProfile)
	return r
}

func TestUpsertProfileSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profileRepo)
	router := setupProfileRouter(handler)

	profileRepo.On("UpsertProfile", mock.Anything, 1, "alice", "🦊").
		Return(models.Profile{ID: 1, DisplayName: "alice", AvatarGlyph: "🦊"}, nil).Once()

	body := bytes.NewBufferString(`{"display_name":"alice","avatar_glyph":"🦊"}`)
	req := httptest.NewRequest(http.MethodPut, "/profile", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestUpsertProfileMissingName(t *testing.T) {
	handler := NewProfileHandler(new(mocks.ProfileRepositoryMock))
	router := setupProfileRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(`{"avatar_glyph":"🦊"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileNotFound(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewProfileHandler(profileRepo)
	router := setupProfileRouter(handler)

	profileRepo.On("GetProfile", mock.Anything, 2).
		Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/profile/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	profileRepo.AssertExpectations(t)
}
