package token

import "github.com/golang-jwt/jwt/v5"

// Type distinguishes the short lived access credential from the long lived refresh credential
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

func (t Type) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the signed payload carried inside every credential.
// Subject holds the principal identifier (email), ID holds the jti.
type Claims struct {
	Role string `json:"role,omitempty"` // Role of the principal at issue time
	Type Type   `json:"type"`           // access | refresh
	jwt.RegisteredClaims
}

// Identifier returns the principal identifier the credential speaks for
func (c *Claims) Identifier() string {
	return c.Subject
}
