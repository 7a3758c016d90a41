package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// Authenticator turns a bearer token into the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Authenticate(c.Request.Context(), extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHENTICATED"))
			c.Abort()
			return
		}

		ctx := services.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
