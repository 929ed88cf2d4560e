package auth

import (
	"context"
	"net/http"
	"strings"

	"user-auth-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RoleSource resolves the current roles of a user.
// Implemented by the user store; kept as an interface here so middleware does
// not depend on persistence.
type RoleSource interface {
	Roles(ctx context.Context, userID string) ([]string, error)
}

// Authenticate verifies the bearer token's signature and expiry and stores
// its literal claims in the request context. It accepts both token kinds;
// distinguishing them is left to InjectRoles and the rbac layer so that a
// refresh token presented on a protected route fails authorization (it
// carries no role claims), not authentication.
func Authenticate(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := m.ReadToken(strings.TrimPrefix(raw, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := WithTokenClaims(c.Request.Context(), claims.UserID, claims.TokenType)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// InjectRoles re-derives the caller's current roles from the user store and
// attaches them to the request context before any authorization check runs.
//
// Preconditions to act: the verified token is an access token and carries a
// user id claim. Otherwise the request proceeds with only the claims
// literally present in the token. This step only enriches context; it never
// blocks the request, and lookup failures are logged and swallowed.
func InjectRoles(src RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		kind, kindErr := TokenKind(ctx)
		userID, uidErr := UserID(ctx)
		if kindErr != nil || uidErr != nil || kind != TokenTypeAccess {
			c.Next()
			return
		}

		roles, err := src.Roles(ctx, userID)
		if err != nil {
			// Unknown user or store failure: proceed without role claims.
			logger.FromGin(c).Debug("role lookup failed", "user_id", userID, "err", err)
			c.Next()
			return
		}

		if len(roles) > 0 {
			c.Request = c.Request.WithContext(WithRoles(ctx, roles))
		}
		c.Next()
	}
}
