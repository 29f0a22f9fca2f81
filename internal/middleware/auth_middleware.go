package middleware

import (
	"context"
	"net/http"
	"strings"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
	"relay-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token and stores the caller on the
// request context. Used by the endpoints that sit outside the core route
// table (room updates, avatar upload).
func AuthMiddleware(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := identity.Resolve(c.Request.Context(), ExtractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithActor(c.Request.Context(), actor)
		ctx = context.WithValue(ctx, logger.UserIdKey, actor.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func ExtractBearer(c *gin.Context) string {
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
