package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("test-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)

	user := &models.User{ID: "u-1", Role: models.RoleManager, DepartmentID: "d-1"}
	token, err := m.IssueToken(user)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.GetUserID())
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.Equal(t, "d-1", claims.DepartmentID)
	assert.Equal(t, "docvault", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m, err := NewJWTManager("test-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	user := &models.User{ID: "u-1", Role: models.RoleEmployee}

	other, err := NewJWTManager("other-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	wrongKey, err := other.IssueToken(user)
	require.NoError(t, err)

	foreign, err := NewJWTManager("test-secret", "someone-else", time.Hour, discard)
	require.NoError(t, err)
	wrongIssuer, err := foreign.IssueToken(user)
	require.NoError(t, err)

	expired, err := NewJWTManager("test-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.IssueToken(user)
	require.NoError(t, err)

	noSubject, err := m.IssueToken(&models.User{})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u-1", Issuer: "docvault"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"expired":      old,
		"no subject":   noSubject,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("", "docvault", time.Hour, discard)
	assert.Error(t, err)
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-key",
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	defer srv.Close()

	v, err := NewJWKSVerifier(srv.URL, discard)
	require.NoError(t, err)
	defer v.Close()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "ext-user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tok.Header["kid"] = "test-key"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	claims, err := v.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "ext-user", claims.Subject)

	hs, err := NewJWTManager("secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	hsToken, err := hs.IssueToken(&models.User{ID: "x"})
	require.NoError(t, err)
	_, err = v.VerifyToken(hsToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChainVerifier(t *testing.T) {
	first, err := NewJWTManager("first-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	second, err := NewJWTManager("second-secret", "docvault", time.Hour, discard)
	require.NoError(t, err)
	chain := ChainVerifier{first, second}

	token, err := second.IssueToken(&models.User{ID: "u-2", Role: models.RoleEmployee})
	require.NoError(t, err)
	claims, err := chain.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.GetUserID())

	_, err = chain.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NoError(t, chain.Close())
}
