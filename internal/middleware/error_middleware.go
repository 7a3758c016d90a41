package middleware

import (
	"net/http"

	"jobfair-live/internal/transport/httpdto"
	"jobfair-live/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders errors attached with c.Error that no handler turned
// into a response, and recovers from panics.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l.WithContext(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", r), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		l.WithContext(c.Request.Context()).Error("request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
