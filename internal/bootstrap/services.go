package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"catalog/internal/config"
	"catalog/internal/mail"
	"catalog/internal/middleware"
	"catalog/internal/repository"
	"catalog/internal/service"
	"catalog/internal/source"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories groups the storage adapters behind the services.
type Repositories struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Likes    repository.LikeRepository
	Tokens   repository.PasswordResetTokenRepository
}

// NewRepositories returns GORM-backed repositories over db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    repository.NewUserRepository(db),
		Products: repository.NewProductRepository(db),
		Likes:    repository.NewLikeRepository(db),
		Tokens:   repository.NewPasswordResetTokenRepository(db),
	}
}

// Services is the set of application services shared by the HTTP server and the CLIs.
type Services struct {
	Identities    *service.IdentityResolver
	Users         *service.UserService
	Auth          *service.AuthService
	PasswordReset *service.PasswordResetService
	Products      *service.ProductService
	Likes         *service.LikeService
	Ingest        *service.IngestService
}

// NewServices builds every service from cfg: repositories over db, the ingestion
// source router (with S3 when configured) and the configured mailer.
func NewServices(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Services, error) {
	sources, err := NewSourceRouter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return WireServices(cfg, NewRepositories(db), rdb, sources, mail.New(cfg)), nil
}

// WireServices assembles services from already-built collaborators.
func WireServices(cfg *config.Config, repos Repositories, rdb *redis.Client, sources source.Opener, mailer mail.Mailer) *Services {
	identities := service.NewIdentityResolver(repos.Users)
	products := service.NewProductService(repos.Products, identities)

	return &Services{
		Identities:    identities,
		Users:         service.NewUserService(repos.Users),
		Auth:          service.NewAuthService(repos.Users, rdb),
		PasswordReset: service.NewPasswordResetService(repos.Users, repos.Tokens, mailer, cfg.PasswordResetTTL()),
		Products:      products,
		Likes:         service.NewLikeService(repos.Likes, products, identities),
		Ingest: service.NewIngestService(repos.Products, identities, sources,
			cfg.IngestTempDir, cfg.IngestTimeout()),
	}
}

// NewSourceRouter returns the ingestion source router. An S3 client is only
// built when S3_KEY or S3_ENDPOINT is set; otherwise s3:// locations fail.
func NewSourceRouter(ctx context.Context, cfg *config.Config) (*source.Router, error) {
	var s3Opener *source.S3Opener
	if cfg.S3Key != "" || cfg.S3Endpoint != "" {
		client, err := source.NewS3Client(ctx, source.S3Config{
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3 source: %w", err)
		}
		s3Opener = source.NewS3Opener(client)
		middleware.Logger.Info("S3 ingestion source enabled",
			slog.String("region", cfg.S3Region),
			slog.String("endpoint", cfg.S3Endpoint),
		)
	}
	return source.NewRouter(nil, s3Opener), nil
}
