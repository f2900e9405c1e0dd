package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// AppError - основная структура ошибки приложения.
// Ожидаемые исходы (Conflict, Unauthorized и т.д.) моделируются как обычные
// типизированные значения, а не паника.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New создает ошибку с кодом, сообщением и HTTP-статусом
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap оборачивает исходную ошибку, сохраняя цепочку для errors.Is/As
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	return &AppError{
		Code:     e.Code,
		Message:  e.Message,
		Details:  details,
		Err:      e.Err,
		HTTPCode: e.HTTPCode,
	}
}

// MarshalJSON скрывает внутреннюю ошибку и HTTP-код от клиента
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Предопределенные ошибки
var (
	// Вход: неизвестный email и неверный пароль отдают один и тот же
	// ответ, чтобы не раскрывать существование учетной записи.
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized)
	ErrAccountSuspended   = New(CodeAccountSuspended, "account suspended", http.StatusUnauthorized)
	ErrAccountInactive    = New(CodeAccountInactive, "account inactive", http.StatusUnauthorized)

	// Refresh-токены
	ErrInvalidRefreshToken = New(CodeInvalidToken, "invalid refresh token", http.StatusUnauthorized)
	ErrRefreshTokenExpired = New(CodeTokenExpired, "refresh token expired", http.StatusUnauthorized)

	// Авторизационный gate
	ErrNoToken            = New(CodeUnauthorized, "not authorized, no token", http.StatusUnauthorized)
	ErrInvalidAccessToken = New(CodeInvalidToken, "invalid token", http.StatusUnauthorized)
	ErrAccessTokenExpired = New(CodeTokenExpired, "token expired", http.StatusUnauthorized)
	ErrUserGone           = New(CodeUnauthorized, "not authorized, user no longer exists", http.StatusUnauthorized)
	ErrAccountNotActive   = New(CodeAccountNotActive, "not authorized, account is not active", http.StatusUnauthorized)

	ErrForbidden = New(CodeForbidden, "access denied", http.StatusForbidden)

	// Пользователи
	ErrUserNotFound       = New(CodeUserNotFound, "user not found", http.StatusNotFound)
	ErrEmailAlreadyExists = New(CodeEmailAlreadyExists, "email already in use", http.StatusConflict)
	ErrWeakPassword       = New(CodeWeakPassword, "password must be at least 6 characters", http.StatusBadRequest)
	ErrInvalidUserRole    = New(CodeInvalidUserRole, "invalid user role", http.StatusBadRequest)
	ErrInvalidToken       = New(CodeInvalidToken, "invalid or expired token", http.StatusUnauthorized)

	// Заказы и отклики
	ErrJobNotFound      = New(CodeJobNotFound, "job not found", http.StatusNotFound)
	ErrProposalNotFound = New(CodeProposalNotFound, "proposal not found", http.StatusNotFound)

	ErrValidationFailed = New(CodeValidationFailed, "validation failed", http.StatusBadRequest)
)

// ValidationError возвращает 400 с подробностями по полям
func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

// InternalError оборачивает неожиданную ошибку в 500
func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "internal server error", http.StatusInternalServerError)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NewNotFoundError(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}
