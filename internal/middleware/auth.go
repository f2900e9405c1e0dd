package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"fwork_backend/internal/auth"
	"fwork_backend/internal/logger"
	"fwork_backend/internal/models"
	"fwork_backend/internal/repositories"
	"fwork_backend/pkg/apperrors"
)

// currentUserKey - ключ gin.Context, под которым gate сохраняет принципала
const currentUserKey = "currentUser"

// AuthUser - проверенная личность запроса. Строится gate'ом из БД,
// а не из claims: роль и статус в токене могли устареть.
type AuthUser struct {
	ID    string
	Email string
	Role  models.UserRole
}

// AuthMiddleware - авторизационный gate. Проверяет подпись и срок действия
// access-токена, перечитывает пользователя из хранилища и прикрепляет
// типизированного AuthUser к запросу. Любой отказ - 401.
func AuthMiddleware(tokens *auth.JWTManager, users repositories.UserRepository) gin.HandlerFunc {
	responder := &apperrors.GinErrorHandler{}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWith(c, responder, apperrors.ErrNoToken)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWith(c, responder, apperrors.ErrAccessTokenExpired)
				return
			}
			abortWith(c, responder, apperrors.ErrInvalidAccessToken)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortWith(c, responder, apperrors.ErrUserGone)
			return
		}

		if user.Status != models.UserStatusActive {
			abortWith(c, responder, apperrors.ErrAccountNotActive)
			return
		}

		c.Set(currentUserKey, &AuthUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})

		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole ограничивает доступ перечисленными ролями.
// Требует, чтобы AuthMiddleware уже отработал.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	responder := &apperrors.GinErrorHandler{}

	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWith(c, responder, apperrors.NewUnauthorizedError("not authorized"))
			return
		}
		if !roleSet[user.Role] {
			abortWith(c, responder, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUser извлекает принципала, прикрепленного gate'ом
func CurrentUser(c *gin.Context) (*AuthUser, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*AuthUser)
	return user, ok
}

func abortWith(c *gin.Context, responder *apperrors.GinErrorHandler, err *apperrors.AppError) {
	responder.Handle(c, err)
	c.Abort()
}
