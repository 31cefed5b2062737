package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage/sqlite"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("wanjiru@example.com", "Wanjiru", "", "")

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestJWTRejects(t *testing.T) {
	user := models.NewUser("wanjiru@example.com", "Wanjiru", "", "")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("one", time.Hour).Generate(user)
		require.NoError(t, err)
		_, err = NewJWTManager("two", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		m := NewJWTManager("secret", -time.Minute)
		token, err := m.Generate(user)
		require.NoError(t, err)
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: user.ID}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = NewJWTManager("secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour).Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordAuthenticator(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	a := NewPasswordAuthenticator(store)
	ctx := context.Background()

	_, err = a.Register(ctx, "kamau@example.com", "Kamau", "", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "not-an-email", "Kamau", "", "longenough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = a.Register(ctx, "Kamau <kamau@example.com>", "Kamau", "", "longenough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = a.Register(ctx, "   ", "Kamau", "", "longenough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	user, err := a.Register(ctx, " Kamau@Example.com ", "Kamau", "+254700000000", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "kamau@example.com", user.Email)
	assert.Equal(t, "+254700000000", user.Phone)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	_, err = a.Register(ctx, "kamau@example.com", "Kamau again", "", "longenough")
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := a.Authenticate(ctx, "KAMAU@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "kamau@example.com", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = a.Authenticate(ctx, "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
