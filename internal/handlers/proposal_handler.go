package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fwork_backend/internal/middleware"
	"fwork_backend/internal/models"
	"fwork_backend/internal/services"
	"fwork_backend/internal/services/dto"
)

type ProposalHandler struct {
	*BaseHandler
	proposalService services.ProposalService
}

func NewProposalHandler(base *BaseHandler, proposalService services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		BaseHandler:     base,
		proposalService: proposalService,
	}
}

// RegisterRoutes регистрирует маршруты откликов как подресурс заказа
func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup, authGate gin.HandlerFunc) {
	proposals := rg.Group("/jobs/:id/proposals", authGate)
	{
		proposals.POST("", middleware.RequireRole(models.UserRoleFreelancer), h.Create)
		proposals.GET("", middleware.RequireRole(models.UserRoleClient), h.ListByJob)
	}
}

// Create - отклик фрилансера на заказ
func (h *ProposalHandler) Create(c *gin.Context) {
	user, ok := h.MustCurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProposalRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	proposal, err := h.proposalService.Create(c.Request.Context(), c.Param("id"), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"proposal": proposal,
	})
}

// ListByJob - отклики заказа, доступно только клиенту-владельцу
func (h *ProposalHandler) ListByJob(c *gin.Context) {
	user, ok := h.MustCurrentUser(c)
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByJob(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"proposals": proposals,
	})
}
