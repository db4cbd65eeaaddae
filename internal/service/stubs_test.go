package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	firstAdminFn     func(context.Context) (*models.User, error)
	listAdminsFn     func(context.Context) ([]models.User, error)
	createFn         func(context.Context, *models.User) error
	setAdminFn       func(context.Context, uint, bool) error
	updatePasswordFn func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) FirstAdmin(ctx context.Context) (*models.User, error) {
	return s.firstAdminFn(ctx)
}
func (s *userRepoStub) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.listAdminsFn(ctx)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return s.setAdminFn(ctx, id, isAdmin)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:        func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:  func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		firstAdminFn:     func(_ context.Context) (*models.User, error) { return nil, nil },
		listAdminsFn:     func(_ context.Context) ([]models.User, error) { return nil, nil },
		createFn:         func(_ context.Context, _ *models.User) error { return nil },
		setAdminFn:       func(_ context.Context, _ uint, _ bool) error { return nil },
		updatePasswordFn: func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// usersRepo serves a fixed set of users by username, email and admin flag.
func usersRepo(users ...models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
		for i := range users {
			if users[i].Username == name {
				u := users[i]
				return &u, nil
			}
		}
		return nil, nil
	}
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		for i := range users {
			if users[i].Email == email {
				u := users[i]
				return &u, nil
			}
		}
		return nil, nil
	}
	repo.firstAdminFn = func(_ context.Context) (*models.User, error) {
		for i := range users {
			if users[i].IsAdmin {
				u := users[i]
				return &u, nil
			}
		}
		return nil, nil
	}
	return repo
}

var (
	alice = models.User{ID: 1, Username: "alice", Email: "alice@example.com", IsAdmin: true}
	bob   = models.User{ID: 2, Username: "bob", Email: "bob@example.com"}
)

// productRepoStub is a stub for repository.ProductRepository.
type productRepoStub struct {
	createFn    func(context.Context, *models.Product) error
	getByIDFn   func(context.Context, uint) (*models.Product, error)
	getByNameFn func(context.Context, string) (*models.Product, error)
	listFn      func(context.Context, int, int) ([]models.Product, error)
	updateFn    func(context.Context, *models.Product) error
	deleteFn    func(context.Context, uint) error
	bulkLoadFn  func(context.Context, io.Reader) (int64, error)
}

func (s *productRepoStub) Create(ctx context.Context, p *models.Product) error {
	return s.createFn(ctx, p)
}
func (s *productRepoStub) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.getByIDFn(ctx, id)
}
func (s *productRepoStub) GetByName(ctx context.Context, name string) (*models.Product, error) {
	return s.getByNameFn(ctx, name)
}
func (s *productRepoStub) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *productRepoStub) Update(ctx context.Context, p *models.Product) error {
	return s.updateFn(ctx, p)
}
func (s *productRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *productRepoStub) BulkLoad(ctx context.Context, r io.Reader) (int64, error) {
	return s.bulkLoadFn(ctx, r)
}

func noopProductRepo() *productRepoStub {
	return &productRepoStub{
		createFn:    func(_ context.Context, _ *models.Product) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Product, error) { return nil, models.NewNotFoundError("Product", id) },
		getByNameFn: func(_ context.Context, name string) (*models.Product, error) { return nil, models.NewNotFoundMessage(name) },
		listFn:      func(_ context.Context, _, _ int) ([]models.Product, error) { return []models.Product{}, nil },
		updateFn:    func(_ context.Context, _ *models.Product) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
		bulkLoadFn:  func(_ context.Context, r io.Reader) (int64, error) { _, err := io.Copy(io.Discard, r); return 0, err },
	}
}

// memoryProducts is an in-memory product store with the same delete semantics
// as the database: removing a product removes its likes.
type memoryProducts struct {
	products []models.Product
	likes    map[[2]uint]bool
}

func newMemoryProducts() *memoryProducts {
	return &memoryProducts{likes: map[[2]uint]bool{}}
}

func (m *memoryProducts) repo() *productRepoStub {
	repo := noopProductRepo()
	repo.createFn = func(_ context.Context, p *models.Product) error {
		p.ID = uint(len(m.products) + 1)
		m.products = append(m.products, *p)
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Product, error) {
		for _, p := range m.products {
			if p.ID == id {
				cp := p
				return &cp, nil
			}
		}
		return nil, models.NewNotFoundError("Product", id)
	}
	repo.getByNameFn = func(_ context.Context, name string) (*models.Product, error) {
		for _, p := range m.products {
			if p.Name == name {
				cp := p
				return &cp, nil
			}
		}
		return nil, models.NewNotFoundMessage("Product with name " + name + " not found")
	}
	repo.listFn = func(_ context.Context, limit, offset int) ([]models.Product, error) {
		if offset >= len(m.products) {
			return []models.Product{}, nil
		}
		end := offset + limit
		if end > len(m.products) {
			end = len(m.products)
		}
		return append([]models.Product{}, m.products[offset:end]...), nil
	}
	repo.updateFn = func(_ context.Context, p *models.Product) error {
		for i := range m.products {
			if m.products[i].ID == p.ID {
				m.products[i] = *p
				return nil
			}
		}
		return models.NewNotFoundError("Product", p.ID)
	}
	repo.deleteFn = func(_ context.Context, id uint) error {
		for key := range m.likes {
			if key[1] == id {
				delete(m.likes, key)
			}
		}
		for i := range m.products {
			if m.products[i].ID == id {
				m.products = append(m.products[:i], m.products[i+1:]...)
				return nil
			}
		}
		return models.NewNotFoundError("Product", id)
	}
	return repo
}

func (m *memoryProducts) likeRepo() *likeRepoStub {
	return &likeRepoStub{
		existsFn: func(_ context.Context, userID, productID uint) (bool, error) {
			return m.likes[[2]uint{userID, productID}], nil
		},
		likeFn: func(_ context.Context, userID, productID uint) error {
			m.likes[[2]uint{userID, productID}] = true
			return nil
		},
		unlikeFn: func(_ context.Context, userID, productID uint) error {
			delete(m.likes, [2]uint{userID, productID})
			return nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	existsFn func(context.Context, uint, uint) (bool, error)
	likeFn   func(context.Context, uint, uint) error
	unlikeFn func(context.Context, uint, uint) error
}

func (s *likeRepoStub) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	return s.existsFn(ctx, userID, productID)
}
func (s *likeRepoStub) Like(ctx context.Context, userID, productID uint) error {
	return s.likeFn(ctx, userID, productID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, userID, productID uint) error {
	return s.unlikeFn(ctx, userID, productID)
}

// tokenRepoStub is an in-memory repository.PasswordResetTokenRepository.
type tokenRepoStub struct {
	tokens  map[string]models.PasswordResetToken
	saveErr error
}

func newTokenRepo() *tokenRepoStub {
	return &tokenRepoStub{tokens: map[string]models.PasswordResetToken{}}
}

func (s *tokenRepoStub) Save(_ context.Context, t *models.PasswordResetToken) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tokens[t.Token] = *t
	return nil
}
func (s *tokenRepoStub) FindByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, models.NewNotFoundMessage("Reset token not found")
	}
	return &t, nil
}
func (s *tokenRepoStub) DeleteByToken(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

// mailerStub records sent messages.
type mailerStub struct {
	to, subject, body string
	err               error
}

func (m *mailerStub) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

// sourceStub serves fixed content for any location. With hang set, reads
// block until the Open context is done.
type sourceStub struct {
	content string
	err     error
	hang    bool
	opened  []string
}

type hangingReader struct {
	ctx context.Context
}

func (r hangingReader) Read([]byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}

func (s *sourceStub) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	s.opened = append(s.opened, location)
	if s.err != nil {
		return nil, s.err
	}
	if s.hang {
		return io.NopCloser(hangingReader{ctx: ctx}), nil
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
