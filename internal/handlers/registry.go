package handlers

import (
	"fwork_backend/internal/services"
	"fwork_backend/internal/validator"
	"fwork_backend/pkg/apperrors"
)

// AppHandlers собирает все хэндлеры приложения для регистрации маршрутов
type AppHandlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Job      *JobHandler
	Proposal *ProposalHandler
}

func NewAppHandlers(svcs *services.ServiceContainer, v *validator.Validator, errHandler *apperrors.GinErrorHandler) *AppHandlers {
	base := NewBaseHandler(v, errHandler)
	return &AppHandlers{
		Auth:     NewAuthHandler(base, svcs.AuthService),
		User:     NewUserHandler(base, svcs.UserService),
		Job:      NewJobHandler(base, svcs.JobService),
		Proposal: NewProposalHandler(base, svcs.ProposalService),
	}
}
