package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetPath(token, password string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("newPassword", password)
	return "/api/reset-password?" + q.Encode()
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)

	status, _ := env.do(http.MethodPost, "/api/forgot-password?email=alice@example.com", nil, "")
	require.Equal(t, http.StatusOK, status)

	mail := env.mailer.last()
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Equal(t, "Password Reset Request", mail.subject)
	_, token, found := strings.Cut(mail.body, ": ")
	require.True(t, found)
	require.NotEmpty(t, token)

	status, _ = env.do(http.MethodPost, resetPath(token, "brand-new-pass"), nil, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(http.MethodPost, "/api/auth/login",
		map[string]string{"username": "alice", "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, status)

	// tokens are single use
	status, body := env.do(http.MethodPost, resetPath(token, "another-pass"), nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/api/forgot-password?email=ghost@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])
	assert.Empty(t, env.mailer.last().to)

	status, body = env.do(http.MethodPost, "/api/forgot-password", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, body["code"])
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", false)
	require.NoError(t, env.db.Create(&models.PasswordResetToken{
		Token:  "stale-token",
		Email:  "alice@example.com",
		Expiry: time.Now().Add(-time.Minute),
	}).Error)

	status, body := env.do(http.MethodPost, resetPath("stale-token", "brand-new-pass"), nil, "")
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, models.CodeTokenExpired, body["code"])

	var count int64
	require.NoError(t, env.db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, resetPath("whatever", "123"), nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, body["code"])
}
