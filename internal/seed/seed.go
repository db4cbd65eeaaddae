package seed

import (
	"fmt"
	"log/slog"

	"catalog/internal/middleware"
	"catalog/internal/models"

	"gorm.io/gorm"
)

// Seed populates users, products and likes according to opts.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumProducts < 0 {
		opts.NumProducts = 0
	}

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}

	products := make([]*models.Product, 0, opts.NumProducts)
	for i := 0; i < opts.NumProducts; i++ {
		owner := users[f.rnd.Intn(len(users))]
		products = append(products, f.BuildProduct(owner))
	}
	if err := f.CreateProductsBatch(products); err != nil {
		return fmt.Errorf("create products: %w", err)
	}

	likes := 0
	if len(products) > 0 {
		for _, u := range users {
			seen := map[uint]bool{}
			for j := 0; j < opts.LikesPerUser && len(seen) < len(products); j++ {
				p := products[f.rnd.Intn(len(products))]
				if seen[p.ID] {
					continue
				}
				seen[p.ID] = true
				if err := f.CreateLike(u, p); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
				likes++
			}
		}
	}

	middleware.Logger.Info("Seeding complete",
		slog.Int("users", len(users)),
		slog.Int("products", len(products)),
		slog.Int("likes", likes),
		slog.Bool("dry_run", opts.DryRun),
	)
	return nil
}

// clearData removes products, likes and every non-admin user.
func clearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.UserProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Where("is_admin = ?", false).Delete(&models.User{}).Error
	})
}
