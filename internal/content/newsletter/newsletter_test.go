package newsletter

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, logger.NewTestLogger(t)), mock
}

func TestRepository_CreateAssignsUUID(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("INSERT INTO newsletters").WillReturnResult(sqlmock.NewResult(0, 1))

	item := &models.NewsletterItem{Title: "March edition", PublishDate: "2024-03-01"}
	require.NoError(t, repo.Create(context.Background(), item))

	_, err := uuid.Parse(item.ID)
	assert.NoError(t, err)
	assert.False(t, item.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MalformedIDIsNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)

	err = repo.Delete(context.Background(), "42")
	stdErr, _ = errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetAndDelete(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New().String()
	now := time.Now()

	mock.ExpectQuery("FROM newsletters WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "content", "image", "author", "publish_date", "created_at", "updated_at"}).
			AddRow(id, "April", "d", "c", "/img/a.png", "Research desk", "2024-04-01", now, now))
	item, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "April", item.Title)

	mock.ExpectQuery("UPDATE newsletters").WillReturnError(sql.ErrNoRows)
	err = repo.Update(context.Background(), &models.NewsletterItem{ID: id, Title: "x"})
	stdErr, _ := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeNotFound, stdErr.Code)

	mock.ExpectExec("DELETE FROM newsletters").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), id))
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	items map[string]models.NewsletterItem
}

func (m *memStore) List(context.Context) ([]models.NewsletterItem, error) {
	out := make([]models.NewsletterItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.NewsletterItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, errors.NewResourceNotFoundError("Newsletter", id)
	}
	return &it, nil
}

func (m *memStore) Create(_ context.Context, n *models.NewsletterItem) error {
	n.ID = uuid.New().String()
	m.items[n.ID] = *n
	return nil
}

func (m *memStore) Update(_ context.Context, n *models.NewsletterItem) error {
	if _, ok := m.items[n.ID]; !ok {
		return errors.NewResourceNotFoundError("Newsletter", n.ID)
	}
	m.items[n.ID] = *n
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return errors.NewResourceNotFoundError("Newsletter", id)
	}
	delete(m.items, id)
	return nil
}

func TestHandler_DeleteRemovesExactlyThatRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memStore{items: map[string]models.NewsletterItem{
		"a": {ID: "a", Title: "One"},
		"b": {ID: "b", Title: "Two"},
	}}
	router := gin.New()
	NewHandler(store, nil, logger.NewTestLogger(t)).Register(router)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			_ = json.NewEncoder(&buf).Encode(body)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/newsletter/a", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/newsletter/a", nil).Code)

	w := do(http.MethodGet, "/newsletter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Newsletters []models.NewsletterItem `json:"newsletters"`
		Count       int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "b", resp.Newsletters[0].ID)

	w = do(http.MethodPut, "/newsletter/b", map[string]interface{}{"title": "Two v2", "publishDate": "2024-13-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Two", store.items["b"].Title)

	w = do(http.MethodPut, "/newsletter/b", map[string]interface{}{"title": "Two v2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Two v2", store.items["b"].Title)

	w = do(http.MethodPost, "/newsletter", map[string]interface{}{"title": "Three"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.items, 2)
}
