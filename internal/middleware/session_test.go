package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/service"
)

func sessionRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session())
	r.GET("/", func(c *gin.Context) {
		*seen = SessionID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestSessionIssuesIDWhenMissing(t *testing.T) {
	var seen string
	r := sessionRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(SessionHeader))
}

func TestSessionKeepsCallerID(t *testing.T) {
	var seen string
	r := sessionRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "tab-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "tab-1", seen)
	assert.Equal(t, "tab-1", w.Header().Get(SessionHeader))
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestResponseMetaIncludesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta Meta
	r := gin.New()
	r.Use(Session(), WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetMeta(c, "source", "memory")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "tab-9")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "tab-9", meta["session_id"])
	assert.Equal(t, "memory", meta["source"])
}

func TestMetricsSkipsProbesAndCollapsesUnknownPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/rooms/a", "/rooms/b", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `path="/rooms/:id"`)
	assert.Contains(t, w.Body.String(), `path="unmatched"`)
}
