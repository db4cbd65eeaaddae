// Package repository implements the data access layer for the catalog.
package repository

import (
	"context"
	"errors"
	"io"
	"time"

	"catalog/internal/database"
	"catalog/internal/models"
	"catalog/internal/observability"

	"gorm.io/gorm"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	BulkLoad(ctx context.Context, csv io.Reader) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository returns a gorm-backed ProductRepository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	defer observability.TrackQuery("create", "product")()

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	defer observability.TrackQuery("get_by_id", "product")()

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Product", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &product, nil
}

// GetByName returns the first product (lowest id) whose name matches exactly.
func (r *productRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	defer observability.TrackQuery("get_by_name", "product")()

	var product models.Product
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Product with name " + name + " not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	defer observability.TrackQuery("list", "product")()

	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

// Update overwrites the mutable columns of an existing row. A row that vanished
// since it was read yields NOT_FOUND.
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	defer observability.TrackQuery("update", "product")()

	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"price":       product.Price,
			"description": product.Description,
			"updated_at":  product.UpdatedAt,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Product", product.ID)
	}
	return nil
}

// Delete removes every like relation for the product and then the product,
// in one transaction.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "product")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.UserProduct{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		result := tx.Delete(&models.Product{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Product", id)
		}
		return nil
	})
}

// BulkLoad streams a headed CSV in models.ProductColumns order into the product
// table with a single COPY. Either every row commits or none does.
func (r *productRepository) BulkLoad(ctx context.Context, csv io.Reader) (int64, error) {
	defer observability.TrackQuery("bulk_load", "product")()

	rows, err := database.CopyFromCSV(ctx, r.db, models.Product{}.TableName(), models.ProductColumns, csv)
	if err != nil {
		if errors.Is(err, database.ErrConnUnavailable) {
			return 0, models.NewStorageUnavailableError(err)
		}
		return 0, models.NewBulkLoadRejectedError(err)
	}
	return rows, nil
}
