package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/hash"
	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

type ProfilePatch struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, patch ProfilePatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", ErrValidation)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = pwHash
	return s.Repo.SaveUser(ctx, user)
}

// SetActive gates authentication: a deactivated user can no longer log in
// or refresh, though outstanding access tokens still run to expiry.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.GetUsers(ctx, offset, limit)
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.Repo.CountUsers(ctx)
}
