package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the credential pair checked by Login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users    repository.UserRepository
	redis    *redis.Client
	hashCost int
}

// NewAuthService returns an AuthService. rdb may be nil, in which case logout
// cannot revoke tokens before they expire.
func NewAuthService(users repository.UserRepository, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, redis: rdb, hashCost: bcrypt.DefaultCost}
}

// Register creates a non-admin user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns the user. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// Logout revokes jti until exp.
func (s *AuthService) Logout(ctx context.Context, jti string, exp time.Time) error {
	if jti == "" {
		return nil
	}
	if s.redis == nil {
		middleware.Logger.WarnContext(ctx, "Redis unavailable, token not revoked", slog.String("jti", jti))
		return nil
	}

	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, middleware.BlacklistKey(jti), "revoked", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
