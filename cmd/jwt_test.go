package main

import (
	"arbitrage/internal/config"
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testPrivateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
}

func TestSignToken(t *testing.T) {
	key, keyPEM := testPrivateKey(t)
	now := time.Now().Truncate(time.Second)

	signed, err := signToken(keyPEM, "dashboard", time.Hour, now)
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	require.NoError(t, err)
	require.Equal(t, "dashboard", claims.Subject)
	require.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time)

	_, err = signToken("not a key", "dashboard", time.Hour, now)
	require.ErrorContains(t, err, "could not parse RSA private key")

	_, err = signToken(keyPEM, "dashboard", 0, now)
	require.Error(t, err)
}

func TestJWTCommand(t *testing.T) {
	_, keyPEM := testPrivateKey(t)
	cfg := &config.Config{}
	cfg.JWT.PrivateKey = keyPEM

	var out bytes.Buffer
	cmd := JWTCommand(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "dashboard", "--ttl", "15m"})
	require.NoError(t, cmd.Execute())
	require.Len(t, strings.Split(strings.TrimSpace(out.String()), "."), 3)

	cmd = JWTCommand(cfg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	require.Error(t, cmd.Execute(), "subject is required")
}
