package apperrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeAccountSuspended   ErrorCode = "ACCOUNT_SUSPENDED"
	CodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	CodeAccountNotActive   ErrorCode = "ACCOUNT_NOT_ACTIVE"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	CodeInvalidUserRole  ErrorCode = "INVALID_USER_ROLE"

	// Ресурсы
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	CodeProposalNotFound ErrorCode = "PROPOSAL_NOT_FOUND"

	// Бизнес-логика
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"

	// Системные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)
