package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"codeberg.org/gamevault/server/internal/correlation"
	apperrors "codeberg.org/gamevault/server/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()

	limit, err := Middleware(opts)
	require.NoError(t, err)

	r := gin.New()
	r.Use(correlation.Middleware(), apperrors.Middleware(), limit)

	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/games", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func get(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":51234"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestMiddleware_LimitReached(t *testing.T) {
	r := newLimitedRouter(t, Options{Rate: "2-M", Name: "test"})

	for i := range 2 {
		w := get(r, "/api/v1/games", "203.0.113.7")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := get(r, "/api/v1/games", "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "E3005", body["error_code"])
	assert.NotEmpty(t, body["correlation_id"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	retry, ok := details["retry_after"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, retry, float64(1))
	assert.LessOrEqual(t, retry, float64(60))
	assert.Equal(t, strconv.Itoa(int(retry)), w.Header().Get("Retry-After"))
}

func TestMiddleware_PerClient(t *testing.T) {
	r := newLimitedRouter(t, Options{Rate: "1-M", Name: "test"})

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/games", "198.51.100.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/api/v1/games", "198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/games", "198.51.100.2").Code)
}

func TestMiddleware_ExemptPaths(t *testing.T) {
	r := newLimitedRouter(t, Options{Rate: "1-M", Name: "test", Exempt: []string{"/health"}})

	for range 5 {
		w := get(r, "/health", "192.0.2.10")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestMiddleware_InvalidRate(t *testing.T) {
	_, err := Middleware(Options{Rate: "lots"})
	assert.Error(t, err)
}

func TestRetryAfter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 42, retryAfter(strconv.FormatInt(now.Unix()+42, 10), now))
	assert.Equal(t, 1, retryAfter(strconv.FormatInt(now.Unix(), 10), now))
	assert.Equal(t, 1, retryAfter(strconv.FormatInt(now.Unix()-5, 10), now))
	assert.Equal(t, 1, retryAfter("", now))
}
