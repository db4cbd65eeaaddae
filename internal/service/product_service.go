package service

import (
	"context"
	"math"
	"strings"
	"time"

	"catalog/internal/models"
	"catalog/internal/observability"
	"catalog/internal/repository"
	"catalog/internal/validation"
)

// Page bounds for ListProducts.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductInput carries the caller-supplied product fields.
type ProductInput struct {
	Name        string  `json:"name" validate:"notblank,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"max=5000"`
}

// ProductPage is one page of the catalog in id order.
type ProductPage struct {
	Items    []models.Product `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type ProductService struct {
	products   repository.ProductRepository
	identities *IdentityResolver
	now        func() time.Time
}

func NewProductService(products repository.ProductRepository, identities *IdentityResolver) *ProductService {
	return &ProductService{
		products:   products,
		identities: identities,
		now:        time.Now,
	}
}

// CreateProduct persists a product owned by the caller.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, callerHandle string) (*models.Product, error) {
	caller, err := s.identities.ResolveByHandle(ctx, callerHandle)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		OwnerID:     caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	observability.ProductMutationsTotal.WithLabelValues("create").Inc()
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// UpdateProduct overwrites name, price and description. Only the owner may update.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput, callerHandle string) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, id, callerHandle, "update")
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Price = in.Price
	product.Description = in.Description
	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	observability.ProductMutationsTotal.WithLabelValues("update").Inc()
	return product, nil
}

// DeleteProduct removes the product and every like of it. Only the owner may delete.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint, callerHandle string) error {
	if _, err := s.ownedProduct(ctx, id, callerHandle, "delete"); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	observability.ProductMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, id uint, callerHandle, action string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	caller, err := s.identities.ResolveByHandle(ctx, callerHandle)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != caller.ID {
		return nil, models.NewForbiddenError("Only the owner can " + action + " this product")
	}
	return product, nil
}

// ListProducts returns page (1-based) of pageSize products in insertion order.
func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		return nil, models.NewValidationError("page must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, models.NewValidationError("pageSize must be between 1 and 100")
	}
	if page > math.MaxInt/pageSize {
		return nil, models.NewValidationError("page is out of range")
	}

	items, err := s.products.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Page: page, PageSize: pageSize}, nil
}

func (s *ProductService) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewValidationError("name is required")
	}
	return s.products.GetByName(ctx, name)
}
