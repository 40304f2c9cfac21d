package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finportal/internal/common/auth"
	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/gate"
)

type tokenVerifier map[string]*auth.Principal

func (v tokenVerifier) Verify(_ context.Context, token string) (*auth.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return nil, errors.NewAuthenticationError("unknown token")
}

type newsStub struct{}

func (newsStub) Register(rg gin.IRoutes) {
	rg.GET("/news", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"news": []string{}, "count": 0}) })
	rg.DELETE("/news/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func setupRouter(t *testing.T, checks map[string]Check) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)

	g := gate.New(gate.Options{
		Verifier: tokenVerifier{
			"admin-token": {Subject: "a1", Roles: []string{"ADMIN"}},
			"user-token":  {Subject: "u1", Roles: []string{"USER"}},
		},
		Logger: log,
	})
	return NewRouter(Deps{
		Gate:   g,
		API:    []Registrar{newsStub{}, nil},
		Checks: checks,
		Logger: log,
	})
}

func get(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(t, nil)

	w := get(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = get(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_http_requests_total")
}

func TestReady(t *testing.T) {
	router := setupRouter(t, map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return assert.AnError },
	})

	w := get(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, assert.AnError.Error(), checks["redis"])
}

func TestEMI(t *testing.T) {
	router := setupRouter(t, nil)

	w := get(router, http.MethodGet, "/api/emi?principal=1500000&rate=8&tenure=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 30414.59, body["emi"])
	assert.NotContains(t, body, "schedule")

	w = get(router, http.MethodGet, "/api/emi?principal=1500000&rate=8&tenure=5&schedule=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["schedule"], 60)

	w = get(router, http.MethodGet, "/api/emi?principal=0&rate=8&tenure=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["emi"])
}

func TestEMI_RejectsNonNumeric(t *testing.T) {
	router := setupRouter(t, nil)

	for _, q := range []string{"principal=abc&rate=8&tenure=5", "principal=100&rate=NaN&tenure=5"} {
		w := get(router, http.MethodGet, "/api/emi?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Contains(t, decode(t, w), "errors")
	}
}

func TestEMI_RejectsTenureAboveMax(t *testing.T) {
	router := setupRouter(t, nil)

	for _, q := range []string{"tenure=10000", "tenure=1e8&schedule=true", "tenure=51"} {
		w := get(router, http.MethodGet, "/api/emi?principal=100000&rate=8&"+q, "")
		require.Equal(t, http.StatusBadRequest, w.Code, q)
		errs, ok := decode(t, w)["errors"].(map[string]interface{})
		require.True(t, ok, q)
		assert.Contains(t, errs, "tenure")
	}

	w := get(router, http.MethodGet, "/api/emi?principal=100000&rate=8&tenure=50", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateWiring(t *testing.T) {
	router := setupRouter(t, nil)

	w := get(router, http.MethodGet, "/api/news", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(router, http.MethodDelete, "/api/news/3", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(router, http.MethodDelete, "/api/news/3", "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(router, http.MethodDelete, "/api/news/3", "admin-token")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = get(router, http.MethodGet, "/admin/news", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sign-in?redirect_url=%2Fadmin%2Fnews", w.Header().Get("Location"))

	w = get(router, http.MethodGet, "/admin/news", "user-token")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestNoRoute(t *testing.T) {
	router := setupRouter(t, nil)

	w := get(router, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(errors.ErrCodeNotFound), decode(t, w)["code"])
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/news", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
