package news

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finportal/internal/cache"
	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context, filter models.NewsFilter) ([]models.NewsItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NewsItem), args.Error(1)
}

func (m *MockStore) View(ctx context.Context, id int) (*models.NewsItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NewsItem), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, n *models.NewsItem) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockStore) Update(ctx context.Context, n *models.NewsItem) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(t *testing.T, store *MockStore) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := logger.NewTestLogger(t)

	router := gin.New()
	NewHandler(store, cache.New(client, time.Minute, "t", log), log).Register(router)
	return router, mr
}

func serve(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_ListIsCachedUntilMutation(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	items := []models.NewsItem{{ID: 1, Title: "Gold hits high"}}
	store.On("List", mock.Anything, models.NewsFilter{}).Return(items, nil).Twice()
	store.On("Delete", mock.Anything, 1).Return(nil).Once()

	for i := 0; i < 3; i++ {
		w := serve(router, http.MethodGet, "/news", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			News  []models.NewsItem `json:"news"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	}
	store.AssertNumberOfCalls(t, "List", 1)

	w := serve(router, http.MethodDelete, "/news/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	serve(router, http.MethodGet, "/news", nil)
	store.AssertNumberOfCalls(t, "List", 2)
}

func TestHandler_ListFilters(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	store.On("List", mock.Anything, mock.MatchedBy(func(f models.NewsFilter) bool {
		return f.Category == "IPO" && f.Featured != nil && *f.Featured
	})).Return([]models.NewsItem{}, nil)

	w := serve(router, http.MethodGet, "/news?category=IPO&featured=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/news?featured=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetByID(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	store.On("View", mock.Anything, 4).Return(&models.NewsItem{ID: 4, Title: "t", Views: 9}, nil)
	store.On("View", mock.Anything, 5).Return(nil, errors.NewResourceNotFoundError("News item", "5"))

	w := serve(router, http.MethodGet, "/news/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"views":9`)

	w = serve(router, http.MethodGet, "/news/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodGet, "/news/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodDelete, "/news/-3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestHandler_CreateValidation(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	w := serve(router, http.MethodPost, "/news", map[string]interface{}{"link": "ftp://x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "title")
	assert.Contains(t, resp.Errors, "link")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Create(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	store.On("Create", mock.Anything, mock.MatchedBy(func(n *models.NewsItem) bool {
		return n.Title == "Markets rally"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.NewsItem).ID = 21
	}).Return(nil)

	w := serve(router, http.MethodPost, "/news", map[string]interface{}{
		"title": "Markets rally", "category": "Markets", "publishDate": "2024-07-01", "link": "/news/markets-rally",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":21`)
}

func TestHandler_UpdateAndDeleteMissing(t *testing.T) {
	store := &MockStore{}
	router, _ := setupRouter(t, store)

	store.On("Update", mock.Anything, mock.Anything).Return(errors.NewResourceNotFoundError("News item", "8"))
	store.On("Delete", mock.Anything, 8).Return(errors.NewResourceNotFoundError("News item", "8"))

	w := serve(router, http.MethodPut, "/news/8", map[string]interface{}{"title": "t"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodDelete, "/news/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteFailureLeavesCache(t *testing.T) {
	store := &MockStore{}
	router, mr := setupRouter(t, store)

	store.On("List", mock.Anything, models.NewsFilter{}).Return([]models.NewsItem{{ID: 1, Title: "a"}}, nil)
	store.On("Delete", mock.Anything, 1).Return(errors.NewQueryExecutionFailedError("delete news", assert.AnError))

	serve(router, http.MethodGet, "/news", nil)
	w := serve(router, http.MethodDelete, "/news/1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, mr.Keys(), 1)
}
