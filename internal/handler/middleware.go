// internal/handler/middleware.go
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sanbara234/fiadoapp/internal/models"
)

const (
	// SessionCookie carries the session token; it wins over the
	// Authorization header when both are present.
	SessionCookie = "session_token"

	bearerPrefix = "Bearer "
)

// RequireSession resolves the bearer token (cookie first, then
// Authorization header) and stores the session in the request context.
func (h *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
				token = strings.TrimPrefix(auth, bearerPrefix)
			}
		}

		session, err := h.auth.ResolveSession(c.Request.Context(), token)
		if err != nil {
			respondError(c, h.logger, err)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequireBusiness rejects requests whose session has no active business.
// It must run after RequireSession.
func (h *AuthHandler) RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionFrom(c).BusinessID == nil {
			respondError(c, h.logger, models.ErrNoBusinessSelected)
			c.Abort()
			return
		}
		c.Next()
	}
}
