// Package bootstrap wires the runtime dependencies shared by the server and CLIs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/redisclient"
	"catalog/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureAdmin creates the configured admin user when none exists.
	EnsureAdmin bool
	// SkipRedis leaves the Redis client nil (CLI tools).
	SkipRedis bool
}

// InitRuntime connects to the database and Redis and bootstraps the admin user.
// The Redis client is nil when Redis is unreachable or skipped.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb = redisclient.ConnectOptional(ctx, cfg.RedisURL)
	}

	if opts.EnsureAdmin {
		if err := EnsureAdmin(ctx, cfg, repository.NewUserRepository(db)); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap admin user: %w", err)
		}
	}

	return db, rdb, nil
}

// EnsureAdmin guarantees at least one admin exists. When none does, the
// ADMIN_USERNAME user is promoted, or created with ADMIN_DEFAULT_PASSWORD.
func EnsureAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) error {
	existing, err := users.FirstAdmin(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		middleware.Logger.Info("Admin user already exists", slog.String("username", existing.Username))
		return nil
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}

	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user != nil {
		if err := users.SetAdmin(ctx, user.ID, true); err != nil {
			return err
		}
		middleware.Logger.Info("Promoted existing user to admin", slog.String("username", username))
		return nil
	}

	if cfg.AdminDefaultPassword == "" {
		middleware.Logger.Warn("No admin user exists and ADMIN_DEFAULT_PASSWORD is empty, skipping admin bootstrap")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminDefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		email = username + "@catalog.local"
	}
	admin := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsAdmin:  true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	middleware.Logger.Info("Admin user created", slog.String("username", username), slog.Uint64("user_id", uint64(admin.ID)))
	return nil
}
