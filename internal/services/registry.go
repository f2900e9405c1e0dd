package services

import "fwork_backend/internal/email"

// ServiceContainer собирает все сервисы приложения для передачи в хэндлеры
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	JobService      JobService
	ProposalService ProposalService
	EmailProvider   email.Provider
}
