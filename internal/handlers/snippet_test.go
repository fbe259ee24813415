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

func setupSnippetRouter(handler *SnippetHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/snippets", handler.ListSnippets)
	r.POST("/snippets", handler.CreateSnippet)
	r.GET("/snippets/:snippet_id", handler.GetSnippet)
	r.PATCH("/snippets/:snippet_id", handler.UpdateSnippet)
	r.DELETE("/snippets/:snippet_id", handler.DeleteSnippet)
	return r
}

func TestListSnippetsSuccess(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("ListSnippets", mock.Anything, 1).Return([]models.Snippet{
		{ID: 1, OwnerID: 1, Title: "fizzbuzz", Code: "int main() {}"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/snippets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "fizzbuzz")
	snippetRepo.AssertExpectations(t)
}

func TestCreateSnippetSuccess(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("CreateSnippet", mock.Anything, 1, "fizzbuzz", "int main() {}").
		Return(models.Snippet{ID: 1, OwnerID: 1, Title: "fizzbuzz", Code: "int main() {}"}, nil).Once()

	body := bytes.NewBufferString(`{"title":"fizzbuzz","code":"int main() {}"}`)
	req := httptest.NewRequest(http.MethodPost, "/snippets", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	snippetRepo.AssertExpectations(t)
}

func TestCreateSnippetMissingTitle(t *testing.T) {
	handler := NewSnippetHandler(new(mocks.SnippetRepositoryMock), nil)
	router := setupSnippetRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/snippets", bytes.NewBufferString(`{"code":"int main() {}"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSnippetNotFound(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("GetSnippet", mock.Anything, 9, 1).
		Return(models.Snippet{}, repositories.ErrSnippetNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/snippets/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	snippetRepo.AssertExpectations(t)
}

func TestUpdateSnippetCodeOnly(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("UpdateSnippet", mock.Anything, 3, 1, strPtr("new code"), (*string)(nil)).
		Return(models.Snippet{ID: 3, OwnerID: 1, Title: "fizzbuzz", Code: "new code"}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/snippets/3", bytes.NewBufferString(`{"code":"new code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	snippetRepo.AssertExpectations(t)
}

func TestUpdateSnippetNothingToUpdate(t *testing.T) {
	handler := NewSnippetHandler(new(mocks.SnippetRepositoryMock), nil)
	router := setupSnippetRouter(handler)

	req := httptest.NewRequest(http.MethodPatch, "/snippets/3", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSnippetSuccess(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("DeleteSnippet", mock.Anything, 3, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/snippets/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	snippetRepo.AssertExpectations(t)
}

func TestDeleteSnippetNotOwned(t *testing.T) {
	snippetRepo := new(mocks.SnippetRepositoryMock)
	handler := NewSnippetHandler(snippetRepo, nil)
	router := setupSnippetRouter(handler)

	snippetRepo.On("DeleteSnippet", mock.Anything, 3, 1).Return(repositories.ErrSnippetNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/snippets/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	snippetRepo.AssertExpectations(t)
}
