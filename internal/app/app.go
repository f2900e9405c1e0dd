package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fwork_backend/database"
	"fwork_backend/internal/auth"
	"fwork_backend/internal/config"
	"fwork_backend/internal/email"
	"fwork_backend/internal/handlers"
	"fwork_backend/internal/logger"
	"fwork_backend/internal/middleware"
	"fwork_backend/internal/repositories"
	"fwork_backend/internal/routes"
	"fwork_backend/internal/services"
	"fwork_backend/internal/validator"
	"fwork_backend/pkg/apperrors"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 1 * time.Hour
)

// Run собирает приложение и запускает HTTP сервер.
// Блокируется до SIGINT/SIGTERM, после чего завершает работу gracefully.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	emailProvider := buildEmailProvider(cfg)
	defer emailProvider.Close()

	svcs, refreshTokenRepo, userRepo, tokens := buildServices(cfg, db, emailProvider)
	router := SetupRouter(cfg, svcs, tokens, userRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepExpiredTokens(ctx, refreshTokenRepo)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// SetupRouter строит gin.Engine со всеми middleware и маршрутами.
// Вынесен отдельно, чтобы интеграционные тесты могли поднять роутер
// без запуска сервера.
func SetupRouter(
	cfg *config.Config,
	svcs *services.ServiceContainer,
	tokens *auth.JWTManager,
	userRepo repositories.UserRepository,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(cfg.Server.CORSOrigins),
	)

	errHandler := &apperrors.GinErrorHandler{Debug: !cfg.IsProduction()}
	appHandlers := handlers.NewAppHandlers(svcs, validator.New(), errHandler)
	authGate := middleware.AuthMiddleware(tokens, userRepo)

	routes.RegisterRoutes(router, appHandlers, authGate)
	return router
}

func buildServices(cfg *config.Config, db *gorm.DB, emailProvider email.Provider) (
	*services.ServiceContainer,
	repositories.RefreshTokenRepository,
	repositories.UserRepository,
	*auth.JWTManager,
) {
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)

	tokens := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.AccessTTL(),
		cfg.RefreshTTL(),
	)

	svcs := &services.ServiceContainer{
		AuthService:     services.NewAuthService(userRepo, refreshTokenRepo, tokens, emailProvider),
		UserService:     services.NewUserService(userRepo),
		JobService:      services.NewJobService(jobRepo),
		ProposalService: services.NewProposalService(proposalRepo, jobRepo),
		EmailProvider:   emailProvider,
	}
	return svcs, refreshTokenRepo, userRepo, tokens
}

// buildEmailProvider выбирает SMTP, если он сконфигурирован,
// иначе провайдер, пишущий письма в лог (локальная разработка).
func buildEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, emails will be logged instead of sent")
		return email.NewLogProvider()
	}

	provider, err := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		BaseURL:   cfg.Email.BaseURL,
	})
	if err != nil {
		logger.Error("failed to configure SMTP provider, falling back to log provider", "error", err.Error())
		return email.NewLogProvider()
	}
	return provider
}

// sweepExpiredTokens периодически удаляет истекшие refresh-токены,
// чтобы таблица не росла за счет брошенных сессий.
func sweepExpiredTokens(ctx context.Context, repo repositories.RefreshTokenRepository) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Error("failed to sweep expired refresh tokens", "error", err.Error())
				continue
			}
			if deleted > 0 {
				logger.Info("swept expired refresh tokens", "count", deleted)
			}
		}
	}
}
