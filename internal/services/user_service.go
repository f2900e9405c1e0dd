package services

import (
	"context"

	"fwork_backend/internal/repositories"
	"fwork_backend/internal/services/dto"
	"fwork_backend/pkg/apperrors"
)

// UserService - чтение данных пользователя
type UserService interface {
	GetByID(ctx context.Context, userID string) (*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetByID(ctx context.Context, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserDTO(user), nil
}
