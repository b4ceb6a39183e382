package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/response"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

// Context ключи для gin.Context.
const (
	ContextAdminIDKey = "adminID"
	ContextAdminKey   = "admin"
)

// Authenticator проверяет access токен администратора.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.AdminUser, error)
}

// AuthMiddleware проверяет JWT access токен администратора.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		admin, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			switch {
			case apperror.IsForbidden(err):
				response.Forbidden(c, "недостаточно прав")
			case errors.Is(err, apperror.ErrUnauthorized):
				response.Unauthorized(c, "токен невалиден")
			default:
				_ = c.Error(err)
				c.Abort()
			}
			return
		}

		c.Set(ContextAdminIDKey, admin.ID)
		c.Set(ContextAdminKey, admin)
		c.Next()
	}
}
