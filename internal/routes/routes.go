package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fwork_backend/internal/handlers"
)

// RegisterRoutes подключает все маршруты приложения под /api/v1.
// authGate - middleware аутентификации, каждая группа сама решает,
// какие маршруты им защищать.
func RegisterRoutes(router *gin.Engine, h *handlers.AppHandlers, authGate gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		h.Auth.RegisterRoutes(v1, authGate)
		h.User.RegisterRoutes(v1, authGate)
		h.Job.RegisterRoutes(v1, authGate)
		h.Proposal.RegisterRoutes(v1, authGate)
	}
}
