package handlers

import (
	"github.com/gin-gonic/gin"

	"fwork_backend/internal/logger"
	"fwork_backend/internal/middleware"
	"fwork_backend/internal/validator"
	"fwork_backend/pkg/apperrors"
)

// BaseHandler содержит общие для всех хэндлеров зависимости:
// валидатор и обработчик ошибок.
type BaseHandler struct {
	validator *validator.Validator
	errors    *apperrors.GinErrorHandler
}

func NewBaseHandler(v *validator.Validator, errHandler *apperrors.GinErrorHandler) *BaseHandler {
	return &BaseHandler{
		validator: v,
		errors:    errHandler,
	}
}

// BindAndValidateJSON разбирает тело запроса и валидирует его.
// При ошибке сам отвечает клиенту и возвращает false.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWarn(ctx, "failed to bind request body", "error", err.Error(), "path", c.Request.URL.Path)
		h.errors.Handle(c, apperrors.NewBadRequestError("invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			h.errors.Handle(c, apperrors.ValidationError(vErr.Errors))
		} else {
			h.errors.Handle(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// HandleServiceError транслирует ошибку сервиса в HTTP ответ
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	h.errors.Handle(c, err)
}

// MustCurrentUser извлекает принципала, прикрепленного авторизационным
// gate'ом. Отсутствие принципала на защищенном маршруте - ошибка wiring'а.
func (h *BaseHandler) MustCurrentUser(c *gin.Context) (*middleware.AuthUser, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		logger.CtxError(c.Request.Context(), "current user missing on protected route", "path", c.Request.URL.Path)
		h.errors.Handle(c, apperrors.NewUnauthorizedError("not authorized"))
		return nil, false
	}
	return user, true
}
