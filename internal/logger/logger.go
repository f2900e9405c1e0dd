package logger

import (
	"log/slog"
	"os"
)

// Init настраивает slog для всего приложения.
// env: "development" или "production"
func Init(env string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	if env == "development" {
		// Development: читаемый текстовый формат
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Production: JSON формат для парсинга
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Debug логирует debug сообщение
func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

// Info логирует info сообщение
func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

// Warn логирует warning сообщение
func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

// Error логирует error сообщение
func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	slog.Default().Error(msg, args...)
	os.Exit(1)
}

// With создает логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}
