package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig содержит конфигурацию SMTP сервера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string

	// BaseURL - основа для ссылок в письмах (фронтенд)
	BaseURL string
}

// SMTPProvider реализует Provider поверх SMTP (gomail)
type SMTPProvider struct {
	config *SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPProvider создает новый SMTP провайдер
func NewSMTPProvider(config *SMTPConfig) (*SMTPProvider, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", config.Port)
	}

	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (p *SMTPProvider) SendVerification(to, token string) error {
	subject := "Подтверждение email"
	body := fmt.Sprintf(
		"<p>Для подтверждения адреса перейдите по ссылке:</p><p><a href=%q>%s/verify-email?token=%s</a></p>",
		fmt.Sprintf("%s/verify-email?token=%s", p.config.BaseURL, token),
		p.config.BaseURL, token,
	)
	return p.send(to, subject, body)
}

func (p *SMTPProvider) SendPasswordReset(to, token string) error {
	subject := "Сброс пароля"
	body := fmt.Sprintf(
		"<p>Ссылка для сброса пароля (действует 1 час):</p><p><a href=%q>%s/reset-password?token=%s</a></p>",
		fmt.Sprintf("%s/reset-password?token=%s", p.config.BaseURL, token),
		p.config.BaseURL, token,
	)
	return p.send(to, subject, body)
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (p *SMTPProvider) Close() error {
	return nil
}
