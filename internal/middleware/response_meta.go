package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey      = "response_meta"
	metaStartKey = "response_meta_start"
)

// Meta is the envelope "meta" object collected while a request is handled.
type Meta map[string]interface{}

// WithResponseMeta starts the request clock and an empty Meta for handlers to fill.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Set(metaKey, Meta{})
		c.Next()
	}
}

// SetMeta records one meta entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta(c)[key] = value
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// ExtractMeta returns the collected meta, stamped with the elapsed processing time
// and the draft session when one is known.
func ExtractMeta(c *gin.Context) Meta {
	if c == nil {
		return nil
	}
	m := meta(c)
	if start, ok := c.Get(metaStartKey); ok {
		if t, ok := start.(time.Time); ok {
			m["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	if session := SessionID(c); session != "" {
		m["session_id"] = session
	}
	return m
}

func meta(c *gin.Context) Meta {
	if v, ok := c.Get(metaKey); ok {
		if m, ok := v.(Meta); ok {
			return m
		}
	}
	m := Meta{}
	c.Set(metaKey, m)
	return m
}
