package auth

import "docvault/internal/domain/models"

// TokenVerifier validates bearer tokens. The middleware only needs the
// subject; it reloads the user from the store on every request.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.TokenClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}

// TokenIssuer mints tokens at login and registration.
type TokenIssuer interface {
	IssueToken(user *models.User) (string, error)
}
