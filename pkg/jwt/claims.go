package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims are carried by tokens issued to API callers.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// HasRole reports whether the claims grant role. Admin implies player.
func (c *Claims) HasRole(role Role) bool {
	if Role(c.Role) == RoleAdmin {
		return true
	}
	return Role(c.Role) == role
}
