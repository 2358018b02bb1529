package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerroom-api/internal/middleware"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
)

// sessionFromContext returns the caller's draft session or a validation error
// when the session middleware did not resolve one.
func sessionFromContext(c *gin.Context) (string, error) {
	session := middleware.SessionID(c)
	if session == "" {
		session = c.GetHeader(middleware.SessionHeader)
	}
	if session == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "X-Session-ID header is required")
	}
	return session, nil
}
