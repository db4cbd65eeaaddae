package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProductService(store *memoryProducts) *ProductService {
	svc := NewProductService(store.repo(), NewIdentityResolver(usersRepo(alice, bob)))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)

	product, err := svc.CreateProduct(context.Background(),
		ProductInput{Name: "Widget", Price: 9.99, Description: "A widget"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint(1), product.ID)
	assert.Equal(t, bob.ID, product.OwnerID)
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestProductService(newMemoryProducts())

	tests := []struct {
		name  string
		input ProductInput
	}{
		{"blank name", ProductInput{Name: " ", Price: 1}},
		{"empty name", ProductInput{Price: 1}},
		{"negative price", ProductInput{Name: "Widget", Price: -0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tt.input, "bob")
			assertValidationError(t, err)
		})
	}
}

func TestProductService_CreateProduct_UnknownCaller(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Widget", Price: 1}, "mallory")
	assertCode(t, err, models.CodeIdentityNotFound)
	assert.Empty(t, store.products)
}

func TestProductService_UpdateProduct_Ownership(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget", Price: 9.99}, "bob")
	require.NoError(t, err)

	later := created.CreatedAt.Add(time.Hour)
	svc.now = func() time.Time { return later }

	updated, err := svc.UpdateProduct(ctx, created.ID, ProductInput{Name: "Widget v2", Price: 12.5, Description: "Better"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = svc.UpdateProduct(ctx, created.ID, ProductInput{Name: "Stolen", Price: 1}, "alice")
	assertCode(t, err, models.CodeForbidden)

	stored, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", stored.Name)
}

func TestProductService_UpdateProduct_Missing(t *testing.T) {
	t.Parallel()
	svc := newTestProductService(newMemoryProducts())

	_, err := svc.UpdateProduct(context.Background(), 42, ProductInput{Name: "X", Price: 1}, "bob")
	assertCode(t, err, models.CodeNotFound)
}

func TestProductService_UpdateProduct_ConcurrentDelete(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget", Price: 1}, "bob")
	require.NoError(t, err)

	repo := store.repo()
	repo.updateFn = func(_ context.Context, p *models.Product) error {
		return models.NewNotFoundError("Product", p.ID)
	}
	svc.products = repo

	_, err = svc.UpdateProduct(ctx, created.ID, ProductInput{Name: "Widget", Price: 2}, "bob")
	assertCode(t, err, models.CodeNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)
	likes := NewLikeService(store.likeRepo(), svc, NewIdentityResolver(usersRepo(alice, bob)))
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget", Price: 1}, "bob")
	require.NoError(t, err)
	_, err = likes.ToggleLike(ctx, created.ID, "alice")
	require.NoError(t, err)
	_, err = likes.ToggleLike(ctx, created.ID, "bob")
	require.NoError(t, err)
	require.Len(t, store.likes, 2)

	err = svc.DeleteProduct(ctx, created.ID, "alice")
	assertCode(t, err, models.CodeForbidden)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID, "bob"))
	for key := range store.likes {
		assert.NotEqual(t, created.ID, key[1], "like relation survived product deletion")
	}

	_, err = svc.GetProduct(ctx, created.ID)
	assertCode(t, err, models.CodeNotFound)

	err = svc.DeleteProduct(ctx, created.ID, "bob")
	assertCode(t, err, models.CodeNotFound)
}

func TestProductService_ListProducts_Bounds(t *testing.T) {
	t.Parallel()
	svc := newTestProductService(newMemoryProducts())

	tests := []struct {
		name           string
		page, pageSize int
		wantErr        bool
	}{
		{"page zero", 0, 10, true},
		{"negative page", -1, 10, true},
		{"page size zero", 1, 0, true},
		{"page size too large", 1, 101, true},
		{"max page size", 1, 100, false},
		{"min page size", 1, 1, false},
		{"offset overflows", math.MaxInt / 50, 100, true},
		{"largest page", math.MaxInt / 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListProducts(context.Background(), tt.page, tt.pageSize)
			if tt.wantErr {
				assertValidationError(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pageSize, page.PageSize)
		})
	}
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: fmt.Sprintf("item-%d", i), Price: float64(i)}, "bob")
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "item-3", page.Items[0].Name)
	assert.Equal(t, "item-4", page.Items[1].Name)
	assert.Equal(t, 2, page.Page)

	page, err = svc.ListProducts(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestProductService_FindProductByName_RoundTrip(t *testing.T) {
	t.Parallel()
	store := newMemoryProducts()
	svc := newTestProductService(store)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ProductInput{Name: "X", Price: 3.5, Description: "the x"}, "alice")
	require.NoError(t, err)

	found, err := svc.FindProductByName(ctx, created.Name)
	require.NoError(t, err)
	assert.Equal(t, created.Name, found.Name)
	assert.Equal(t, created.Price, found.Price)
	assert.Equal(t, created.Description, found.Description)

	_, err = svc.FindProductByName(ctx, "Y")
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.FindProductByName(ctx, "")
	assertValidationError(t, err)
}
