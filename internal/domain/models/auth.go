package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the JWT payload issued at login. Role and department are
// informational; the middleware reloads the user so role changes apply immediately.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role         Role   `json:"role,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *TokenClaims) GetUserID() string {
	return c.Subject
}
