package service

import (
	"context"
	"log/slog"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repository"
)

// UserService manages administrative flags on existing users.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}

// SetAdmin grants or revokes the admin flag of the user named username.
func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewIdentityNotFoundError(username)
	}

	if err := s.userRepo.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin

	middleware.Logger.InfoContext(ctx, "Admin flag updated",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Bool("is_admin", isAdmin),
	)
	return user, nil
}
