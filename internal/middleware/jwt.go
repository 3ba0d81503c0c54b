package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	"github.com/docgate-io/docgate/internal/pkg/jwt"
	"github.com/docgate-io/docgate/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
	ContextUserRoleKey  = "user_role"
)

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserEmailKey, claims.Email)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group on the caller's token role. The token
// role only opens the door; data visibility is still resolved per request
// from the profile store.
func RequireRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Get(ContextUserRoleKey)
		role, _ := raw.(string)
		if !model.ParseRole(role).AtLeast(min) {
			response.Error(c, errcode.ErrForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
