package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwork_backend/internal/auth"
	"fwork_backend/internal/models"
	"fwork_backend/internal/repositories"
	"fwork_backend/internal/services/dto"
	"fwork_backend/pkg/apperrors"
)

// --- In-memory фейки репозиториев ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	// createErr подменяет результат Create, имитируя нарушение
	// уникального индекса под гонкой
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByVerificationToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if token != "" && u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if token != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *fakeRefreshTokenRepo) FindByToken(_ context.Context, tokenString string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenString]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositories.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteByToken(_ context.Context, tokenString string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenString)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	now := time.Now()
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeRefreshTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// --- Test fixture ---

type authFixture struct {
	svc       AuthService
	userRepo  *fakeUserRepo
	tokenRepo *fakeRefreshTokenRepo
	tokens    *auth.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	tokens := auth.NewJWTManager("test-access-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour)
	return &authFixture{
		svc:       NewAuthService(userRepo, tokenRepo, tokens, nil),
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
	}
}

func (f *authFixture) register(t *testing.T, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: "secret123",
		Role:     models.UserRoleClient,
	})
	require.NoError(t, err)
	return resp
}

// --- Register ---

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "client@example.com",
		Password: "secret123",
		Role:     models.UserRoleClient,
	})
	require.NoError(t, err)

	// Регистрация сразу выдает сессию
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "client@example.com", resp.User.Email)
	assert.Equal(t, models.UserRoleClient, resp.User.Role)
	assert.Equal(t, models.UserStatusPending, resp.User.Status)
	assert.False(t, resp.User.IsVerified)

	// Access-токен валиден и указывает на созданного пользователя
	claims, err := f.tokens.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// Refresh-токен сохранен в хранилище
	stored, err := f.tokenRepo.FindByToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, stored.UserID)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "client@example.com",
		Password: "12345",
		Role:     models.UserRoleClient,
	})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "client@example.com",
		Password: "secret123",
		Role:     "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserRole)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "client@example.com")

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "client@example.com",
		Password: "another-secret",
		Role:     models.UserRoleFreelancer,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthService_Register_DuplicateUnderRace(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	// Предварительная проверка email ничего не нашла, но вставка уперлась
	// в уникальный индекс: конкурирующая регистрация успела первой.
	f.userRepo.createErr = repositories.ErrUserAlreadyExists

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "client@example.com",
		Password: "secret123",
		Role:     models.UserRoleClient,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

// --- Login ---

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Каждый вход создает собственную сессию, старая не отзывается
	assert.NotEqual(t, registered.RefreshToken, resp.RefreshToken)
	assert.Equal(t, 2, f.tokenRepo.count())
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "client@example.com")

	// Неизвестный email и неверный пароль дают один и тот же ответ
	_, unknownErr := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	_, wrongPassErr := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, unknownErr, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestAuthService_Login_BlockedStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  models.UserStatus
		wantErr *apperrors.AppError
	}{
		{name: "suspended", status: models.UserStatusSuspended, wantErr: apperrors.ErrAccountSuspended},
		{name: "inactive", status: models.UserStatusInactive, wantErr: apperrors.ErrAccountInactive},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthFixture(t)
			resp := f.register(t, "client@example.com")

			user, err := f.userRepo.FindByID(context.Background(), resp.User.ID)
			require.NoError(t, err)
			user.Status = tt.status
			require.NoError(t, f.userRepo.Update(context.Background(), user))

			_, err = f.svc.Login(context.Background(), &dto.LoginRequest{
				Email:    "client@example.com",
				Password: "secret123",
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Login_PendingAllowed(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.register(t, "client@example.com")

	// Pending не мешает входу: дальше его остановит авторизационный gate
	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusPending, resp.User.Status)
}

// --- RefreshAccessToken ---

func TestAuthService_RefreshAccessToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	resp, err := f.svc.RefreshAccessToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, registered.User.ID, resp.User.ID)
	claims, err := f.tokens.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	// Refresh-токен не ротируется: старый продолжает работать
	_, err = f.svc.RefreshAccessToken(context.Background(), registered.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.tokenRepo.count())
}

func TestAuthService_RefreshAccessToken_Unknown(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.RefreshAccessToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_RefreshAccessToken_ExpiredOnceThenInvalid(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	// Истекший токен: строка в хранилище протухла
	expired := &models.RefreshToken{
		UserID:    registered.User.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.tokenRepo.Create(context.Background(), expired))

	// Первый вызов - expired, строка при этом удаляется
	_, err := f.svc.RefreshAccessToken(context.Background(), "expired-token")
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

	// Повторный вызов того же токена - уже invalid
	_, err = f.svc.RefreshAccessToken(context.Background(), "expired-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_RefreshAccessToken_UserGone(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	orphan := &models.RefreshToken{
		UserID:    uuid.NewString(),
		Token:     "orphan-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.tokenRepo.Create(context.Background(), orphan))

	_, err := f.svc.RefreshAccessToken(context.Background(), "orphan-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

// --- Logout ---

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	require.NoError(t, f.svc.Logout(context.Background(), registered.RefreshToken))
	assert.Equal(t, 0, f.tokenRepo.count())

	// Отозванный токен больше не обновляет сессию
	_, err := f.svc.RefreshAccessToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	require.NoError(t, f.svc.Logout(context.Background(), registered.RefreshToken))
	require.NoError(t, f.svc.Logout(context.Background(), registered.RefreshToken))
	require.NoError(t, f.svc.Logout(context.Background(), "never-existed"))
}

// --- VerifyEmail ---

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	stored, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.VerificationToken)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), stored.VerificationToken))

	verified, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, models.UserStatusActive, verified.Status)
	assert.Empty(t, verified.VerificationToken)

	// Токен одноразовый
	err = f.svc.VerifyEmail(context.Background(), stored.VerificationToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_VerifyEmail_UnknownToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	err := f.svc.VerifyEmail(context.Background(), "bogus")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// --- ForgotPassword / ResetPassword ---

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "client@example.com"))

	stored, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExp)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetTokenExp, 5*time.Second)
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), "client@example.com"))

	stored, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPassword(context.Background(), stored.ResetToken, "new-secret"))

	// Старый пароль больше не работает, новый работает
	_, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "new-secret",
	})
	assert.NoError(t, err)

	// Токен сброса одноразовый
	err = f.svc.ResetPassword(context.Background(), stored.ResetToken, "another-secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_ResetPassword_RevokesSessions(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")
	require.NoError(t, f.svc.ForgotPassword(context.Background(), "client@example.com"))

	stored, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ResetPassword(context.Background(), stored.ResetToken, "new-secret"))

	// Все refresh-токены пользователя отозваны
	_, err = f.svc.RefreshAccessToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	user, err := f.userRepo.FindByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	user.ResetToken = "stale-reset-token"
	user.ResetTokenExp = &expired
	require.NoError(t, f.userRepo.Update(context.Background(), user))

	err = f.svc.ResetPassword(context.Background(), "stale-reset-token", "new-secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// --- ChangePassword ---

func TestAuthService_ChangePassword(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	err := f.svc.ChangePassword(context.Background(), registered.User.ID, "secret123", "new-secret")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "client@example.com",
		Password: "new-secret",
	})
	assert.NoError(t, err)

	// Смена пароля завершает существующие сессии
	_, err = f.svc.RefreshAccessToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	registered := f.register(t, "client@example.com")

	err := f.svc.ChangePassword(context.Background(), registered.User.ID, "wrong-password", "new-secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
