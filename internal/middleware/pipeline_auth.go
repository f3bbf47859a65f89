package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finman/internal/errors"
	"finman/internal/logger"
)

// APIKeyHeader carries the shared secret of the scheduler.
const APIKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards the scheduler endpoints with a shared API key.
// An empty apiKey disables the endpoints entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithAppError(c, apperrors.ErrSchedulerNotConfigured)
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			logger.Get().Warnw("rejected scheduler request",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"key_present", key != "",
			)
			abortWithAppError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}

func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{"error": gin.H{"code": err.Code, "message": err.Message}})
}
