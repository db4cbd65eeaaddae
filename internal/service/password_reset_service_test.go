package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type resetFixture struct {
	svc     *PasswordResetService
	tokens  *tokenRepoStub
	mailer  *mailerStub
	now     time.Time
	updated map[uint]string
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	f := &resetFixture{
		tokens:  newTokenRepo(),
		mailer:  &mailerStub{},
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		updated: map[uint]string{},
	}
	users := usersRepo(alice, bob)
	users.updatePasswordFn = func(_ context.Context, id uint, hash string) error {
		f.updated[id] = hash
		return nil
	}
	f.svc = NewPasswordResetService(users, f.tokens, f.mailer, 0)
	f.svc.now = func() time.Time { return f.now }
	f.svc.newToken = func() string { return "2b1f0c3e-token" }
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func TestPasswordResetService_ForgotPassword(t *testing.T) {
	t.Parallel()
	f := newResetFixture(t)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "bob@example.com"))

	stored, ok := f.tokens.tokens["2b1f0c3e-token"]
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", stored.Email)
	assert.Equal(t, f.now.Add(3*time.Hour+5*time.Minute), stored.Expiry)

	assert.Equal(t, "bob@example.com", f.mailer.to)
	assert.Equal(t, "Password Reset Request", f.mailer.subject)
	assert.Equal(t, "Use this token to reset your password: 2b1f0c3e-token", f.mailer.body)
}

func TestPasswordResetService_ForgotPassword_Errors(t *testing.T) {
	t.Parallel()

	f := newResetFixture(t)
	err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	assertCode(t, err, models.CodeNotFound)
	assert.Empty(t, f.tokens.tokens)

	err = f.svc.ForgotPassword(context.Background(), "")
	assertValidationError(t, err)

	f.mailer.err = errors.New("smtp: 421 service not available")
	err = f.svc.ForgotPassword(context.Background(), "bob@example.com")
	assertCode(t, err, models.CodeInternal)
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	t.Parallel()
	f := newResetFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ForgotPassword(ctx, "bob@example.com"))

	require.NoError(t, f.svc.ResetPassword(ctx, "2b1f0c3e-token", "newsecret"))
	require.Contains(t, f.updated, bob.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.updated[bob.ID]), []byte("newsecret")))
	assert.Empty(t, f.tokens.tokens, "token must be single use")

	err := f.svc.ResetPassword(ctx, "2b1f0c3e-token", "another")
	assertCode(t, err, models.CodeNotFound)
}

func TestPasswordResetService_ResetPassword_Expired(t *testing.T) {
	t.Parallel()
	f := newResetFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ForgotPassword(ctx, "bob@example.com"))

	f.now = f.now.Add(3*time.Hour + 6*time.Minute)
	err := f.svc.ResetPassword(ctx, "2b1f0c3e-token", "newsecret")
	assertCode(t, err, models.CodeTokenExpired)
	assert.Empty(t, f.tokens.tokens, "expired token must be deleted")
	assert.Empty(t, f.updated)
}

func TestPasswordResetService_ResetPassword_Validation(t *testing.T) {
	t.Parallel()
	f := newResetFixture(t)

	assertValidationError(t, f.svc.ResetPassword(context.Background(), "", "newsecret"))
	assertValidationError(t, f.svc.ResetPassword(context.Background(), "tok", "12345"))
}
