package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finman/internal/errors"
	"finman/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error. AppErrors keep
// their code and message; anything else becomes INTERNAL_ERROR with the
// details logged only.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Get().With(
			"request_id", RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal)
		}

		abortWithAppError(c, appErr)
	}
}
