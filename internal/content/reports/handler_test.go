package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finportal/internal/common/auth"
	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/gate"
	"finportal/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context, filter models.ReportFilter) ([]models.ResearchReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResearchReport), args.Error(1)
}

func (m *MockStore) Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error) {
	args := m.Called(ctx, q, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResearchReport), args.Error(1)
}

func (m *MockStore) View(ctx context.Context, id int, publishedOnly bool) (*models.ResearchReport, error) {
	args := m.Called(ctx, id, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResearchReport), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, r *models.ResearchReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) Update(ctx context.Context, r *models.ResearchReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, r *models.ResearchReport) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockIndexer) Remove(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockIndexer) Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error) {
	args := m.Called(ctx, q, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResearchReport), args.Error(1)
}

type adminVerifier struct{}

func (adminVerifier) Verify(_ context.Context, token string) (*auth.Principal, error) {
	if token == "admin" {
		return &auth.Principal{Subject: "a", Roles: []string{"ADMIN"}}, nil
	}
	return nil, errors.NewAuthenticationError("bad token")
}

func setupRouter(t *testing.T, store *MockStore, indexer Indexer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)

	router := gin.New()
	router.Use(gate.New(gate.Options{Verifier: adminVerifier{}, Logger: log}).Middleware())
	NewHandler(store, indexer, nil, log).Register(router.Group("/api"))
	return router
}

func call(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func publishedOnly(f models.ReportFilter) bool {
	return f.Published != nil && *f.Published
}

func TestHandler_ListVisibility(t *testing.T) {
	store := &MockStore{}
	router := setupRouter(t, store, nil)

	store.On("List", mock.Anything, mock.MatchedBy(publishedOnly)).
		Return([]models.ResearchReport{{ID: 1, Published: true}}, nil).Once()
	store.On("List", mock.Anything, mock.MatchedBy(func(f models.ReportFilter) bool { return f.Published == nil })).
		Return([]models.ResearchReport{{ID: 1, Published: true}, {ID: 2}}, nil).Once()

	w := call(router, http.MethodGet, "/api/reports", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = call(router, http.MethodGet, "/api/reports", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	store.AssertExpectations(t)
}

func TestHandler_ListRejectsUnknownRating(t *testing.T) {
	router := setupRouter(t, &MockStore{}, nil)

	w := call(router, http.MethodGet, "/api/reports?rating=STRONG", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateIndexesAndSurvivesIndexFailure(t *testing.T) {
	store := &MockStore{}
	indexer := &MockIndexer{}
	router := setupRouter(t, store, indexer)

	store.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ResearchReport).ID = 11
	}).Return(nil)
	indexer.On("Index", mock.Anything, mock.MatchedBy(func(r *models.ResearchReport) bool { return r.ID == 11 })).
		Return(errors.NewElasticsearchConnectionFailedError(assert.AnError))

	w := call(router, http.MethodPost, "/api/reports", "admin", map[string]interface{}{
		"title": "Maruti volumes", "reportType": "SECTOR_REPORT", "rating": "hold",
		"targetPrice": 11000, "currentPrice": 10000,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.ResearchReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.RatingHold, got.Rating)
	assert.Equal(t, 10.0, *got.Upside)
	indexer.AssertExpectations(t)
}

func TestHandler_CreateInvalidEnum(t *testing.T) {
	store := &MockStore{}
	router := setupRouter(t, store, nil)

	w := call(router, http.MethodPost, "/api/reports", "admin", map[string]interface{}{
		"title": "x", "reportType": "DAILY_NOTE", "rating": "BUY",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"reportType"`)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_MutationsRequireAdmin(t *testing.T) {
	router := setupRouter(t, &MockStore{}, nil)

	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodDelete, "/api/reports/1", "", nil).Code)
}

func TestHandler_SearchFallsBackToDatabase(t *testing.T) {
	store := &MockStore{}
	indexer := &MockIndexer{}
	router := setupRouter(t, store, indexer)

	indexer.On("Search", mock.Anything, "infosys", true).Return(nil, errors.NewIndexNotFoundError("research-reports"))
	store.On("Search", mock.Anything, "infosys", true).Return([]models.ResearchReport{{ID: 5}}, nil)

	w := call(router, http.MethodGet, "/api/reports/search?q=infosys", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"database"`)

	w = call(router, http.MethodGet, "/api/reports/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SearchUsesIndex(t *testing.T) {
	store := &MockStore{}
	indexer := &MockIndexer{}
	router := setupRouter(t, store, indexer)

	indexer.On("Search", mock.Anything, "tcs", false).Return([]models.ResearchReport{{ID: 8}}, nil)

	w := call(router, http.MethodGet, "/api/reports/search?q=tcs", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"index"`)
	store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_DeleteRemovesFromIndex(t *testing.T) {
	store := &MockStore{}
	indexer := &MockIndexer{}
	router := setupRouter(t, store, indexer)

	store.On("Delete", mock.Anything, 3).Return(nil)
	indexer.On("Remove", mock.Anything, 3).Return(nil)

	w := call(router, http.MethodDelete, "/api/reports/3", "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	indexer.AssertExpectations(t)
}

func TestHandler_GetUnpublishedHiddenFromPublic(t *testing.T) {
	store := &MockStore{}
	router := setupRouter(t, store, nil)

	store.On("View", mock.Anything, 2, true).Return(nil, errors.NewResourceNotFoundError("Report", "2"))
	store.On("View", mock.Anything, 2, false).Return(&models.ResearchReport{ID: 2}, nil)

	assert.Equal(t, http.StatusNotFound, call(router, http.MethodGet, "/api/reports/2", "", nil).Code)
	assert.Equal(t, http.StatusOK, call(router, http.MethodGet, "/api/reports/2", "admin", nil).Code)
}

func TestReindex(t *testing.T) {
	store := &MockStore{}
	indexer := &MockIndexer{}

	store.On("List", mock.Anything, models.ReportFilter{}).
		Return([]models.ResearchReport{{ID: 1}, {ID: 2}}, nil)
	indexer.On("Index", mock.Anything, mock.MatchedBy(func(r *models.ResearchReport) bool { return r.ID == 1 })).Return(nil)
	indexer.On("Index", mock.Anything, mock.MatchedBy(func(r *models.ResearchReport) bool { return r.ID == 2 })).
		Return(errors.NewSearchQueryFailedError("research-reports", assert.AnError))

	n, err := Reindex(context.Background(), store, indexer, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
