package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fwork_backend/internal/middleware"
	"fwork_backend/internal/models"
	"fwork_backend/internal/services"
	"fwork_backend/internal/services/dto"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

// RegisterRoutes регистрирует маршруты заказов.
// Чтение открыто всем аутентифицированным, запись - только клиентам.
func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup, authGate gin.HandlerFunc) {
	jobs := rg.Group("/jobs", authGate)
	{
		jobs.GET("", h.List)
		jobs.GET("/:id", h.GetByID)

		clientOnly := middleware.RequireRole(models.UserRoleClient)
		jobs.POST("", clientOnly, h.Create)
		jobs.PATCH("/:id/status", clientOnly, h.UpdateStatus)
	}
}

// Create - создание заказа клиентом
func (h *JobHandler) Create(c *gin.Context) {
	user, ok := h.MustCurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"job":    job,
	})
}

// List - страница заказов с пагинацией через query-параметры page и pageSize
func (h *JobHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	resp, err := h.jobService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"jobs":   resp.Jobs,
		"total":  resp.Total,
	})
}

// GetByID - один заказ
func (h *JobHandler) GetByID(c *gin.Context) {
	job, err := h.jobService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"job":    job,
	})
}

// UpdateStatus - смена статуса заказа его владельцем
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	user, ok := h.MustCurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateJobStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), c.Param("id"), user.ID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"job":    job,
	})
}
