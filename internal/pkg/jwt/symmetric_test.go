package jwt_test

import (
	"context"
	"strings"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/jwt"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte(strings.Repeat("s", 64))

func newSigner(t *testing.T, clk *clock.Frozen) *jwt.Symmetric {
	t.Helper()

	s, err := jwt.NewHS512(jwt.Config{
		Secret:    secret,
		Issuer:    "authbite",
		Audiences: []string{"authbite"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)
	return s
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	t.Parallel()

	clk := clock.NewFrozen(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	signer := newSigner(t, clk)

	token, err := signer.Generate("Alice")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Username)
	assert.Equal(t, "Alice", claims.Subject)
	assert.Equal(t, "authbite", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, clk.Now().Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestSymmetric_Expired(t *testing.T) {
	t.Parallel()

	clk := clock.NewFrozen(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	signer := newSigner(t, clk)

	token, err := signer.Generate("alice")
	require.NoError(t, err)

	clk.Advance(16 * time.Minute)
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSymmetric_Rejects(t *testing.T) {
	t.Parallel()

	clk := clock.NewFrozen(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	signer := newSigner(t, clk)

	t.Run("short key", func(t *testing.T) {
		t.Parallel()

		_, err := jwt.NewHS512(jwt.Config{Secret: []byte("short")})
		require.ErrorIs(t, err, jwt.ErrSigningKeyTooShort)
	})

	t.Run("blank subject", func(t *testing.T) {
		t.Parallel()

		_, err := signer.Generate("  ")
		require.ErrorIs(t, err, jwt.ErrEmptySubject)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := signer.Verify("not.a.token")
		require.Error(t, err)
	})

	t.Run("other key", func(t *testing.T) {
		t.Parallel()

		other, err := jwt.NewHS512(jwt.Config{
			Secret:    []byte(strings.Repeat("o", 64)),
			Issuer:    "authbite",
			Audiences: []string{"authbite"},
			TTL:       time.Minute,
			Clock:     clk,
			UUID:      uid.NewUUID(),
		})
		require.NoError(t, err)

		token, err := other.Generate("alice")
		require.NoError(t, err)

		_, err = signer.Verify(token)
		require.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		t.Parallel()

		now := clk.Now()
		token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, jwt.Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				Subject:   "alice",
				Issuer:    "authbite",
				Audience:  []string{"authbite"},
				IssuedAt:  libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(time.Minute)),
			},
			Username: "alice",
		}).SignedString(secret)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		require.Error(t, err)
	})
}

func TestAuthContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, jwt.GetAuth(context.Background()))

	ctx := jwt.SetAuth(context.Background(), jwt.Claims{Username: "alice"})
	got := jwt.GetAuth(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}
