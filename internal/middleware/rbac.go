package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// RoleResolver looks up the application role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (models.UserRole, error)
}

// RequireRoles allows the request through when the caller's profile role is
// one of roles. It must run after JWT.
func RequireRoles(resolver RoleResolver, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		role, err := resolver.RoleOf(c.Request.Context(), claims.UserID())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts a route to admins.
func RequireAdmin(resolver RoleResolver) gin.HandlerFunc {
	return RequireRoles(resolver, models.RoleAdmin)
}
