package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/utils"
	"gorm.io/gorm"
)

// UserService provides user lookups and profile updates.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string, page utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.Search(ctx, query, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) SetProfilePicture(ctx context.Context, id uint64, path string) error {
	if err := s.userRepo.UpdateProfilePicture(ctx, id, path); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update profile picture: %w", err)
	}
	return nil
}
