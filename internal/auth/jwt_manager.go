package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

// JWTManager issues and verifies HS256 tokens signed with a shared secret.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewJWTManager creates an HS256 issuer/verifier
func NewJWTManager(secret, issuer string, ttl time.Duration, logger *slog.Logger) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

var (
	_ TokenVerifier = (*JWTManager)(nil)
	_ TokenIssuer   = (*JWTManager)(nil)
)

// IssueToken signs a token whose subject is the user id
func (m *JWTManager) IssueToken(user *models.User) (string, error) {
	now := m.now()
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, expiry and issuer
func (m *JWTManager) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		m.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		m.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (m *JWTManager) Close() error { return nil }
