package v1handler_test

import (
	"arbitrage/internal/api/handler/v1handler"
	"arbitrage/pkg/serrors"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// rsaKeyPair returns a fresh private key and its PEM encoded public half.
func rsaKeyPair(tb testing.TB) (*rsa.PrivateKey, string) {
	tb.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(tb, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(tb, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func sign(tb testing.TB, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	tb.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(tb, err)

	return signed
}

func TestSecHandler_Authenticate(t *testing.T) {
	key, pubPEM := rsaKeyPair(t)
	otherKey, _ := rsaKeyPair(t)

	sh, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: pubPEM})
	require.NoError(t, err)
	require.True(t, sh.Enabled())

	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "dashboard",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	with := func(mod func(*jwt.RegisteredClaims)) jwt.RegisteredClaims {
		c := valid
		mod(&c)

		return c
	}

	tests := []struct {
		name    string
		token   string
		subject string
	}{
		{name: "valid", token: sign(t, jwt.SigningMethodRS256, key, valid), subject: "dashboard"},
		{name: "missing", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "foreign key", token: sign(t, jwt.SigningMethodRS256, otherKey, valid)},
		{name: "hmac", token: sign(t, jwt.SigningMethodHS256, []byte("secret"), valid)},
		{name: "expired", token: sign(t, jwt.SigningMethodRS256, key, with(func(c *jwt.RegisteredClaims) {
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
		}))},
		{name: "no expiry", token: sign(t, jwt.SigningMethodRS256, key, with(func(c *jwt.RegisteredClaims) {
			c.ExpiresAt = nil
		}))},
		{name: "no subject", token: sign(t, jwt.SigningMethodRS256, key, with(func(c *jwt.RegisteredClaims) {
			c.Subject = ""
		}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := sh.Authenticate(context.Background(), tt.token)
			if tt.subject == "" {
				require.ErrorIs(t, err, serrors.ErrUnauthorized)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.subject, v1handler.SubjectFromContext(ctx))
		})
	}
}

func TestNewSecHandler(t *testing.T) {
	for _, opts := range []*v1handler.SecHandlerOptions{nil, {}} {
		sh, err := v1handler.NewSecHandler(opts)
		require.NoError(t, err)
		require.False(t, sh.Enabled())
	}

	_, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: "not a key"})
	require.Error(t, err)

	require.Empty(t, v1handler.SubjectFromContext(context.Background()))
}
