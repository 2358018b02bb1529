package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/peerroom-api/pkg/logger"
)

// SessionHeader carries the caller's draft session id in both directions.
const SessionHeader = "X-Session-ID"

const maxSessionLength = 128

// Session resolves the draft session for the request. Callers without a usable
// X-Session-ID receive a fresh one in the response header and should echo it back.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(SessionHeader)
		if session == "" || len(session) > maxSessionLength {
			session = uuid.NewString()
		}
		c.Set(logger.SessionKey, session)
		c.Writer.Header().Set(SessionHeader, session)
		c.Next()
	}
}

// SessionID returns the session resolved by Session, or "" when the middleware did not run.
func SessionID(c *gin.Context) string {
	return c.GetString(logger.SessionKey)
}
