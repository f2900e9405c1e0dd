package email

import "fwork_backend/internal/logger"

// LogProvider пишет уведомления в лог вместо реальной отправки.
// Используется, когда SMTP не сконфигурирован (локальная разработка, тесты).
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) SendVerification(to, token string) error {
	logger.Info("verification email (log provider)", "to", to, "token", token)
	return nil
}

func (p *LogProvider) SendPasswordReset(to, token string) error {
	logger.Info("password reset email (log provider)", "to", to, "token", token)
	return nil
}

func (p *LogProvider) Close() error {
	return nil
}
