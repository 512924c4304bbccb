package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of externally issued identity tokens. The
// subject is the stable uid used across profiles and resources.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UID returns the token subject.
func (c *JWTClaims) UID() string {
	return c.Subject
}
