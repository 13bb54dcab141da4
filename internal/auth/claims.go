package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of an identity provider token this service reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UserID is the token subject; it owns mind maps and viewer sessions.
func (c *Claims) UserID() string {
	return c.Subject
}
