// internal/handler/response.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
)

const sessionContextKey = "session"

// respondError maps the domain error taxonomy to HTTP statuses. Anything
// outside the taxonomy is a server fault and is logged, not exposed.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrInvalidSession),
		errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNoBusinessSelected),
		errors.Is(err, models.ErrInvalidKind),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// sessionFrom returns the session placed in the context by RequireSession.
func sessionFrom(c *gin.Context) *models.Session {
	return c.MustGet(sessionContextKey).(*models.Session)
}

// businessFrom returns the active business id; RequireBusiness guarantees
// it is set on the routes that call this.
func businessFrom(c *gin.Context) int64 {
	return *sessionFrom(c).BusinessID
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
