package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"inmobiliaria/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	sellers := NewSellerService(db, zerolog.Nop())
	return NewAuthService(testSecret, 7*24*time.Hour, sellers, zerolog.Nop()), mock
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	svc := NewAuthService(testSecret, 7*24*time.Hour, nil, zerolog.Nop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, expiresAt, err := svc.GenerateToken(&models.Seller{ID: 4, Email: "a@b.co", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(7*24*time.Hour), expiresAt)

	claims, ok := svc.Verify(token)
	require.True(t, ok)
	assert.Equal(t, 4, claims.SellerID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
}

func TestVerify_Rejects(t *testing.T) {
	svc := NewAuthService(testSecret, time.Hour, nil, zerolog.Nop())
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateToken(&models.Seller{ID: 4})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewAuthService(testSecret, time.Hour, nil, zerolog.Nop())
		later.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, ok := later.Verify(token)
		assert.False(t, ok)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService("another-secret", time.Hour, nil, zerolog.Nop())
		other.now = svc.now
		_, ok := other.Verify(token)
		assert.False(t, ok)
	})

	t.Run("malformed", func(t *testing.T) {
		_, ok := svc.Verify("not.a.token")
		assert.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := svc.Verify("")
		assert.False(t, ok)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{SellerID: 4})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, ok := svc.Verify(s)
		assert.False(t, ok)
	})

	t.Run("missing seller id", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "a@b.co"})
		s, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, ok := svc.Verify(s)
		assert.False(t, ok)
	})
}

func TestLoginThenCurrentSeller(t *testing.T) {
	svc, mock := newTestAuth(t)
	hash := hashPassword(t, "Vendedor123!")

	mock.ExpectQuery(`FROM sellers WHERE email = \?`).WillReturnRows(sellerRow(12, "a@b.co", hash, true))
	mock.ExpectQuery(`FROM sellers WHERE id = \?`).WithArgs(12).WillReturnRows(sellerRow(12, "a@b.co", hash, true))

	session, err := svc.Login(context.Background(), "a@b.co", "Vendedor123!")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 12, session.Seller.ID)

	seller, err := svc.CurrentSeller(context.Background(), session.Token)
	require.NoError(t, err)
	require.NotNil(t, seller)
	assert.Equal(t, 12, seller.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock := newTestAuth(t)
	mock.ExpectQuery(`FROM sellers WHERE email = \?`).
		WillReturnRows(sellerRow(12, "a@b.co", hashPassword(t, "Vendedor123!"), true))

	session, err := svc.Login(context.Background(), "a@b.co", "incorrecta")
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentSeller(t *testing.T) {
	t.Run("invalid token does not query", func(t *testing.T) {
		svc, _ := newTestAuth(t)
		seller, err := svc.CurrentSeller(context.Background(), "garbage")
		assert.NoError(t, err)
		assert.Nil(t, seller)
	})

	t.Run("deleted seller", func(t *testing.T) {
		svc, mock := newTestAuth(t)
		token, _, err := svc.GenerateToken(&models.Seller{ID: 5})
		require.NoError(t, err)
		mock.ExpectQuery(`FROM sellers WHERE id = \?`).WithArgs(5).WillReturnRows(sqlmock.NewRows(sellerColumns))

		seller, err := svc.CurrentSeller(context.Background(), token)
		assert.NoError(t, err)
		assert.Nil(t, seller)
	})

	t.Run("inactive seller", func(t *testing.T) {
		svc, mock := newTestAuth(t)
		token, _, err := svc.GenerateToken(&models.Seller{ID: 5})
		require.NoError(t, err)
		mock.ExpectQuery(`FROM sellers WHERE id = \?`).WillReturnRows(sellerRow(5, "a@b.co", "hash", false))

		seller, err := svc.CurrentSeller(context.Background(), token)
		assert.NoError(t, err)
		assert.Nil(t, seller)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, mock := newTestAuth(t)
		token, _, err := svc.GenerateToken(&models.Seller{ID: 5})
		require.NoError(t, err)
		mock.ExpectQuery(`FROM sellers WHERE id = \?`).WillReturnError(errors.New("timeout"))

		seller, err := svc.CurrentSeller(context.Background(), token)
		assert.Error(t, err)
		assert.Nil(t, seller)
	})
}
