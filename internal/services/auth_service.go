package services

import (
	"context"
	"time"

	"fwork_backend/internal/auth"
	"fwork_backend/internal/email"
	"fwork_backend/internal/logger"
	"fwork_backend/internal/models"
	"fwork_backend/internal/repositories"
	"fwork_backend/internal/services/dto"
	"fwork_backend/pkg/apperrors"
)

// AuthService - менеджер учетных данных и сессий: регистрация, вход,
// обновление access-токена, отзыв refresh-токенов, сброс пароля.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.JWTManager
	emailProvider    email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.JWTManager,
	emailProvider email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		emailProvider:    emailProvider,
	}
}

// Register создает пользователя и сразу логинит его: в ответе токены.
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Role != models.UserRoleFreelancer && req.Role != models.UserRoleClient {
		return nil, apperrors.ErrInvalidUserRole
	}

	// Предварительная проверка - только оптимизация; источник истины
	// под гонкой - уникальный индекс в БД (обрабатывается ниже).
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verificationToken, err := auth.GenerateRandomToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:             req.Email,
		PasswordHash:      passwordHash,
		Role:              req.Role,
		Status:            models.UserStatusPending,
		IsVerified:        false,
		VerificationToken: verificationToken,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendVerificationEmail(ctx, user.Email, verificationToken)

	return s.issueTokens(ctx, user)
}

// Login аутентифицирует по email и паролю.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			// Тот же ответ, что и при неверном пароле: не раскрываем,
			// какая часть проверки провалилась.
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Статус проверяется только после пароля. Pending допускается ко входу:
	// авторизационный gate все равно не пустит его дальше.
	switch user.Status {
	case models.UserStatusSuspended:
		return nil, apperrors.ErrAccountSuspended
	case models.UserStatusInactive:
		return nil, apperrors.ErrAccountInactive
	}

	return s.issueTokens(ctx, user)
}

// RefreshAccessToken выдает новый access-токен по действующему refresh-токену.
// Сам refresh-токен не ротируется и не продлевается.
func (s *AuthServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	token, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if time.Now().After(token.ExpiresAt) {
		// Строка удаляется безусловно до возврата ошибки: повторный вызов
		// с тем же токеном получит уже "invalid", а не "expired".
		if err := s.refreshTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
			logger.CtxWithError(ctx, "failed to delete expired refresh token", err)
		}
		return nil, apperrors.ErrRefreshTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		User:        dto.NewUserDTO(user),
	}, nil
}

// Logout удаляет refresh-токен. Отсутствие токена - тоже успех.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// VerifyEmail переводит пользователя из pending в active по токену из письма.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	user.IsVerified = true
	user.VerificationToken = ""
	if user.Status == models.UserStatusPending {
		user.Status = models.UserStatusActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ForgotPassword генерирует reset-токен со сроком действия 1 час,
// сохраняет его и отправляет письмо (best-effort).
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	resetToken, err := auth.GenerateRandomToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	resetTokenExp := time.Now().Add(1 * time.Hour)

	user.ResetToken = resetToken
	user.ResetTokenExp = &resetTokenExp

	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.InternalError(err)
	}

	s.sendPasswordResetEmail(ctx, user.Email, resetToken)

	return nil
}

// ResetPassword меняет пароль по reset-токену и отзывает все refresh-токены
// пользователя.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if user.ResetToken != token || user.ResetTokenExp == nil || time.Now().After(*user.ResetTokenExp) {
		return apperrors.ErrInvalidToken
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = passwordHash
	user.ResetToken = ""
	user.ResetTokenExp = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		logger.CtxWithError(ctx, "failed to revoke refresh tokens after password reset", err, "user_id", user.ID)
	}

	return nil
}

// ChangePassword меняет пароль, когда пользователь знает текущий.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	user.PasswordHash = passwordHash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.InternalError(err)
	}

	// Смена пароля завершает остальные сессии
	if err := s.refreshTokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		logger.CtxWithError(ctx, "failed to revoke refresh tokens after password change", err, "user_id", user.ID)
	}

	return nil
}

// --- Helper functions ---

// issueTokens выдает пару токенов и сохраняет refresh-токен в БД.
// Старые refresh-токены не отзываются: пользователь может держать
// несколько параллельных сессий.
func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, expiresAt, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	tokenModel := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}
	if err := s.refreshTokenRepo.Create(ctx, tokenModel); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserDTO(user),
	}, nil
}

// sendVerificationEmail отправляет письмо верификации (best-effort)
func (s *AuthServiceImpl) sendVerificationEmail(ctx context.Context, to, token string) {
	if s.emailProvider == nil {
		return
	}
	go func() {
		if err := s.emailProvider.SendVerification(to, token); err != nil {
			logger.CtxWithError(ctx, "failed to send verification email", err, "to", to)
		}
	}()
}

// sendPasswordResetEmail отправляет письмо для сброса пароля (best-effort)
func (s *AuthServiceImpl) sendPasswordResetEmail(ctx context.Context, to, token string) {
	if s.emailProvider == nil {
		return
	}
	go func() {
		if err := s.emailProvider.SendPasswordReset(to, token); err != nil {
			logger.CtxWithError(ctx, "failed to send password reset email", err, "to", to)
		}
	}()
}
