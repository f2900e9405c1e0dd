package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fwork_backend/internal/models"
)

// ErrRefreshTokenNotFound возвращается, когда refresh-токен не найден в БД
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository определяет операции с refresh-токенами
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error)

	// DeleteByToken удаляет токен по значению. Отсутствие строки не
	// является ошибкой: logout идемпотентен.
	DeleteByToken(ctx context.Context, tokenString string) error

	// DeleteByUserID удаляет все refresh-токены пользователя
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired удаляет все истекшие токены
	DeleteExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository создает GORM-реализацию RefreshTokenRepository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).First(&token, "token = ?", tokenString).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByToken(ctx context.Context, tokenString string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", tokenString).
		Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
