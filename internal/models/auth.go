package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the subset of the auth provider's access token we rely on.
// The user id travels in the standard "sub" claim.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's identifier.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
