package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

// JWKSVerifier verifies tokens minted by an external identity provider
// against its published key set.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWKSVerifier fetches public keys from jwksURL. The key set is cached
// and refreshed in the background until Close.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWKS verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		cancel: cancel,
		logger: logger,
	}, nil
}

var _ TokenVerifier = (*JWKSVerifier)(nil)

// VerifyToken accepts RS256 and ES256 only.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close stops the background refresh.
func (v *JWKSVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWKS verifier closed")
	return nil
}

// ChainVerifier accepts a token if any of its verifiers does, in order.
type ChainVerifier []TokenVerifier

var _ TokenVerifier = ChainVerifier(nil)

func (c ChainVerifier) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	for _, v := range c {
		if claims, err := v.VerifyToken(tokenString); err == nil {
			return claims, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

func (c ChainVerifier) Close() error {
	var errs []error
	for _, v := range c {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
