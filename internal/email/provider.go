package email

// Provider определяет интерфейс для отправки уведомлений.
// Все отправители вызываются best-effort: ошибка отправки логируется и
// никогда не валит родительскую операцию.
type Provider interface {
	// SendVerification отправляет письмо с токеном подтверждения email
	SendVerification(to, token string) error

	// SendPasswordReset отправляет письмо со ссылкой для сброса пароля
	SendPasswordReset(to, token string) error

	// Close закрывает соединение с провайдером
	Close() error
}
