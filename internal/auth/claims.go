package auth

import "clubconnect/backend/internal/constants"

// UserClaims is the identity attached to every authenticated request.
// Tokens are minted by the external identity provider; this backend only
// verifies them.
type UserClaims interface {
	UserID() string
	Role() string
	IsAdmin() bool
}

type JWTClaims struct {
	Subject   string
	RoleValue string
}

func (c *JWTClaims) UserID() string { return c.Subject }
func (c *JWTClaims) Role() string   { return c.RoleValue }
func (c *JWTClaims) IsAdmin() bool  { return c.RoleValue == constants.RoleAdmin }
