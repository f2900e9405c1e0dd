package apperrors

import (
	"github.com/gin-gonic/gin"

	"fwork_backend/internal/logger"
)

// ErrorResponse - стандартный конверт ответа об ошибке
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *AppError `json:"error"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	// Debug включает передачу деталей внутренних ошибок клиенту.
	// В production должен быть выключен.
	Debug bool
}

// Handle отправляет ошибку клиенту в стандартном конверте.
// Все, что не является *AppError, считается неожиданной ошибкой: логируется
// целиком на сервере и уходит клиенту как общий internal server error.
func (h *GinErrorHandler) Handle(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(c.Request.Context(), "server error", appErr, "path", c.Request.URL.Path)
		if !h.Debug {
			appErr = New(CodeInternalError, "internal server error", appErr.HTTPCode)
		}
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Status: "error", Error: appErr})
}

// AsAppError пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
