// Package seed provides helpers to create demo data for the catalog database.
// These helpers are intended for development and testing only.
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"catalog/internal/middleware"
	"catalog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configures the seeder and its factory.
type Options struct {
	NumUsers     int
	NumProducts  int
	LikesPerUser int
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays     int
	ShouldClean bool
	DryRun      bool
	SkipBcrypt  bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// BuildProduct returns an unsaved product owned by owner.
func (f *Factory) BuildProduct(owner *models.User, overrides ...func(*models.Product)) *models.Product {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	created := time.Now().Add(-time.Duration(f.rnd.Intn(maxDays))*24*time.Hour - time.Duration(f.rnd.Intn(24*60))*time.Minute)

	product := &models.Product{
		Name:        gofakeit.ProductName(),
		Price:       math.Round(gofakeit.Price(1, 500)*100) / 100,
		Description: gofakeit.ProductDescription(),
		OwnerID:     owner.ID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, override := range overrides {
		override(product)
	}
	return product
}

// CreateProductsBatch persists products in one insert.
func (f *Factory) CreateProductsBatch(products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range products {
			f.nextID++
			p.ID = f.nextID
		}
		middleware.Logger.Info("[dry-run] CreateProductsBatch", slog.Int("products", len(products)))
		return nil
	}
	return f.db.CreateInBatches(products, 500).Error
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + strconv.Itoa(gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateLike persists a like from user on product.
func (f *Factory) CreateLike(user *models.User, product *models.Product) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.UserProduct{OwnerID: user.ID, ProductID: product.ID}).Error
}

// WriteCSV writes a header and n generated product rows in the format the
// bulk loader accepts (name,price,description).
func WriteCSV(w io.Writer, n int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "price", "description"}); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row := []string{
			gofakeit.ProductName(),
			fmt.Sprintf("%.2f", gofakeit.Price(1, 500)),
			gofakeit.ProductDescription(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
