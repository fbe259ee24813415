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
	"codechat-service/internal/ws"
)

func setupDMRouter(handler *DMHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/dms", handler.ListConversations)
	r.GET("/dms/:user_id/messages", handler.GetConversation)
	r.POST("/dms/:user_id/messages", handler.PostDirectMessage)
	r.PATCH("/dms/:user_id/messages/:message_id", handler.UpdateDirectMessageCode)
	r.DELETE("/dms/:user_id/messages/:message_id", handler.DeleteDirectMessage)
	return r
}

func TestListConversationsSuccess(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewDMHandler(dmRepo, profileRepo, ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("ListConversations", mock.Anything, 1).Return([]models.Conversation{{PartnerID: 2}}, nil).Once()
	profileRepo.On("BulkProfiles", mock.Anything, []int{2}).Return([]models.Profile{{ID: 2, DisplayName: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/dms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bob")
	dmRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestGetConversationSuccess(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("ListConversation", mock.Anything, 1, 2).Return([]models.DirectMessage{
		{ID: 1, SenderID: 1, ReceiverID: 2, Text: strPtr("hi")},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/dms/2/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestPostDirectMessageSuccess(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("CreateDirectMessage", mock.Anything, 1, 2, strPtr("hi"), (*string)(nil), (*string)(nil)).
		Return(models.DirectMessage{ID: 5, SenderID: 1, ReceiverID: 2, Text: strPtr("hi")}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/dms/2/messages", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestPostDirectMessageToSelf(t *testing.T) {
	handler := NewDMHandler(new(mocks.DirectMessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/dms/1/messages", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDirectMessageCodeSuccess(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("GetDirectMessage", mock.Anything, 7, 1).
		Return(models.DirectMessage{ID: 7, SenderID: 1, ReceiverID: 2, CodeContent: strPtr("old")}, nil).Once()
	dmRepo.On("UpdateCodeContent", mock.Anything, 7, 1, "new code").
		Return(models.DirectMessage{ID: 7, SenderID: 1, ReceiverID: 2, CodeContent: strPtr("new code")}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/dms/2/messages/7", bytes.NewBufferString(`{"code_content":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestUpdateDirectMessageCodeNotAuthor(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("GetDirectMessage", mock.Anything, 7, 1).
		Return(models.DirectMessage{ID: 7, SenderID: 2, ReceiverID: 1, CodeContent: strPtr("old")}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/dms/2/messages/7", bytes.NewBufferString(`{"code_content":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestUpdateDirectMessageWrongConversation(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("GetDirectMessage", mock.Anything, 7, 1).
		Return(models.DirectMessage{ID: 7, SenderID: 1, ReceiverID: 3, CodeContent: strPtr("old")}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/dms/2/messages/7", bytes.NewBufferString(`{"code_content":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestDeleteDirectMessageSuccess(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("GetDirectMessage", mock.Anything, 7, 1).
		Return(models.DirectMessage{ID: 7, SenderID: 1, ReceiverID: 2}, nil).Once()
	dmRepo.On("DeleteDirectMessage", mock.Anything, 7, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/dms/2/messages/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	dmRepo.AssertExpectations(t)
}

func TestDeleteDirectMessageNotFound(t *testing.T) {
	dmRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewDMHandler(dmRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupDMRouter(handler)

	dmRepo.On("GetDirectMessage", mock.Anything, 99, 1).
		Return(models.DirectMessage{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/dms/2/messages/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	dmRepo.AssertExpectations(t)
}
