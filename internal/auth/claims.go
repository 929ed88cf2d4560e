package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeAccess  TokenType = "access"
)

// Claims are the only supported JWT claims shape for this service.
// Two-tier invariant: a minted token carries exactly one token_type and one
// user_id claim and never a role claim. Roles are re-derived from the user
// store per request (see InjectRoles) so role changes take effect without
// re-login.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	TokenType TokenType `json:"token_type"`
}
