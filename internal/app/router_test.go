package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/internal/auth"
	"mediahub/internal/microservices/http-api/handler"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testRouter(health Pinger, withMetrics bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Verifier:    auth.NewVerifier("secret", ""),
		Health:      health,
		CORSOrigins: []string{"*"},
		Metrics:     withMetrics,
		Search:      handler.NewSearchHandler(nil),
		Library:     handler.NewLibraryHandler(nil),
		Versus:      handler.NewVersusHandler(nil),
		Import:      handler.NewImportHandler(nil),
	})
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(testRouter(pinger{}, false), "/health", "").Code)

	w := get(testRouter(pinger{err: errors.New("connection refused")}, false), "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(testRouter(pinger{}, false), "/metrics", "").Code)

	w := get(testRouter(pinger{}, true), "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestAPIRequiresToken(t *testing.T) {
	r := testRouter(pinger{}, false)
	for _, path := range []string{"/api/watched", "/api/search/movies?q=heat", "/api/import/abc", "/api/versus/abc"} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path, "").Code, path)
	}

	token, err := auth.NewToken("other-secret", "", auth.Context{UserID: "u1"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/watched", token).Code)
}

func TestSearchBlankQueryIsAuthorisedAndEmpty(t *testing.T) {
	r := testRouter(pinger{}, false)
	token, err := auth.NewToken("secret", "", auth.Context{UserID: "u1"}, time.Minute)
	require.NoError(t, err)

	w := get(r, "/api/search/movies", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[],"total":0}`, w.Body.String())
}
