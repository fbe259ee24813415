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

func strPtr(s string) *string { return &s }

func setupGroupRouter(handler *GroupHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/group/messages", handler.ListGroupMessages)
	r.POST("/group/messages", handler.PostGroupMessage)
	r.PATCH("/group/messages/:message_id", handler.UpdateGroupMessageCode)
	r.DELETE("/group/messages/:message_id", handler.DeleteGroupMessage)
	return r
}

func TestListGroupMessagesSuccess(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewGroupHandler(messageRepo, profileRepo, ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("ListGroupMessages", mock.Anything).Return([]models.GroupMessage{
		{ID: 1, SenderID: 1, Text: strPtr("hey")},
		{ID: 2, SenderID: 2, CodeContent: strPtr("int main() {}"), CodeLanguage: strPtr("cpp")},
	}, nil).Once()
	profileRepo.On("BulkProfiles", mock.Anything, []int{1, 2}).Return([]models.Profile{
		{ID: 1, DisplayName: "me"},
		{ID: 2, DisplayName: "bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/group/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bob")
	messageRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestPostGroupMessageTextOnly(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("CreateGroupMessage", mock.Anything, 1, strPtr("hey"), (*string)(nil), (*string)(nil)).
		Return(models.GroupMessage{ID: 3, SenderID: 1, Text: strPtr("hey")}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/group/messages", bytes.NewBufferString(`{"text":"hey"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestPostGroupMessageCodeOnlyStoresNullText(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("CreateGroupMessage", mock.Anything, 1, (*string)(nil), strPtr("int main() {}"), strPtr("cpp")).
		Return(models.GroupMessage{ID: 4, SenderID: 1, CodeContent: strPtr("int main() {}"), CodeLanguage: strPtr("cpp")}, nil).Once()

	body := bytes.NewBufferString(`{"text":"","code_content":"int main() {}","code_language":"cpp"}`)
	req := httptest.NewRequest(http.MethodPost, "/group/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestPostGroupMessageEmptyPayload(t *testing.T) {
	handler := NewGroupHandler(new(mocks.GroupMessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/group/messages", bytes.NewBufferString(`{"text":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateGroupMessageCodeSuccess(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("GetGroupMessage", mock.Anything, 7).
		Return(models.GroupMessage{ID: 7, SenderID: 1, CodeContent: strPtr("old")}, nil).Once()
	messageRepo.On("UpdateCodeContent", mock.Anything, 7, 1, "new code").
		Return(models.GroupMessage{ID: 7, SenderID: 1, CodeContent: strPtr("new code")}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/group/messages/7", bytes.NewBufferString(`{"code_content":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestUpdateGroupMessageCodeNotAuthor(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("GetGroupMessage", mock.Anything, 7).
		Return(models.GroupMessage{ID: 7, SenderID: 2, CodeContent: strPtr("old")}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/group/messages/7", bytes.NewBufferString(`{"code_content":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestDeleteGroupMessageSuccess(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("GetGroupMessage", mock.Anything, 7).
		Return(models.GroupMessage{ID: 7, SenderID: 1}, nil).Once()
	messageRepo.On("DeleteGroupMessage", mock.Anything, 7, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/group/messages/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestDeleteGroupMessageNotFound(t *testing.T) {
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupGroupRouter(handler)

	messageRepo.On("GetGroupMessage", mock.Anything, 99).
		Return(models.GroupMessage{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/group/messages/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	messageRepo.AssertExpectations(t)
}
