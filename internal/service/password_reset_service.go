package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"catalog/internal/mail"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPasswordResetTTL is how long a reset token stays redeemable.
	DefaultPasswordResetTTL = 3*time.Hour + 5*time.Minute

	passwordResetSubject = "Password Reset Request"
	passwordResetBody    = "Use this token to reset your password: "
)

type resetPasswordInput struct {
	Token       string `query:"token" validate:"required"`
	NewPassword string `query:"newPassword" validate:"required,min=6,max=72"`
}

type PasswordResetService struct {
	users    repository.UserRepository
	tokens   repository.PasswordResetTokenRepository
	mailer   mail.Mailer
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
	hashCost int
}

func NewPasswordResetService(
	users repository.UserRepository,
	tokens repository.PasswordResetTokenRepository,
	mailer mail.Mailer,
	ttl time.Duration,
) *PasswordResetService {
	if ttl <= 0 {
		ttl = DefaultPasswordResetTTL
	}
	return &PasswordResetService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		ttl:      ttl,
		now:      time.Now,
		newToken: func() string { return uuid.New().String() },
		hashCost: bcrypt.DefaultCost,
	}
}

// ForgotPassword issues a reset token for email and mails it to the user.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.NewValidationError("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundMessage("User with email " + email + " not found")
	}

	token := &models.PasswordResetToken{
		Token:  s.newToken(),
		Email:  user.Email,
		Expiry: s.now().Add(s.ttl),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, passwordResetSubject, passwordResetBody+token.Token); err != nil {
		return models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "Password reset token issued",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Time("expiry", token.Expiry),
	)
	return nil
}

// ResetPassword redeems token and replaces the owner's password. Tokens are
// single use; an expired token is deleted and reported as TOKEN_EXPIRED.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.Struct(resetPasswordInput{Token: token, NewPassword: newPassword}); err != nil {
		return err
	}

	stored, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if stored.Expired(s.now()) {
		if err := s.tokens.DeleteByToken(ctx, token); err != nil {
			return err
		}
		return models.NewTokenExpiredError()
	}

	user, err := s.users.GetByEmail(ctx, stored.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundMessage("User with email " + stored.Email + " not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	if err := s.tokens.DeleteByToken(ctx, token); err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}
