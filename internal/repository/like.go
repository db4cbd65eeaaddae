package repository

import (
	"context"
	"errors"
	"strings"

	"catalog/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgForeignKeyViolation is the PostgreSQL SQLSTATE for a foreign key violation.
const pgForeignKeyViolation = "23503"

// LikeRepository persists the user_product relation.
type LikeRepository interface {
	Exists(ctx context.Context, userID, productID uint) (bool, error)
	Like(ctx context.Context, userID, productID uint) error
	Unlike(ctx context.Context, userID, productID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a gorm-backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserProduct{}).
		Where("owner_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Like(ctx context.Context, userID, productID uint) error {
	// a concurrent toggle may already have inserted the pair
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO user_product (owner_id, product_id) VALUES (?, ?) ON CONFLICT (owner_id, product_id) DO NOTHING`,
		userID, productID,
	).Error
	if err != nil {
		// the product was deleted between the existence check and the insert
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Product", productID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) Unlike(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", userID, productID).
		Delete(&models.UserProduct{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "SQLSTATE "+pgForeignKeyViolation)
}
