package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fwork_backend/internal/services"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authGate gin.HandlerFunc) {
	users := rg.Group("/users", authGate)
	{
		users.GET("/me", h.GetMe)
	}
}

// GetMe - профиль текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := h.MustCurrentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetByID(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user":   profile,
	})
}
