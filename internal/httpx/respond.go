package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/apierr"
	"pathfinder/pkg/logger"
)

// Fail writes err as a JSON error body. Client errors keep their message;
// anything else is logged with request context and reported as a bare 500.
func Fail(c *gin.Context, log *logger.Logger, err error) {
	status := apierr.StatusOf(err)
	if status < http.StatusInternalServerError {
		var ae *apierr.Error
		msg := http.StatusText(status)
		if errors.As(err, &ae) && ae.Err != nil {
			msg = ae.Err.Error()
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}

	if log != nil {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
