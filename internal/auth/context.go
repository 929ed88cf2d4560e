package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxTokenType
	ctxRoles
)

// WithTokenClaims stores the claims literally present in a verified token.
func WithTokenClaims(ctx context.Context, userID string, kind TokenType) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxTokenType, kind)
	return ctx
}

// WithRoles attaches server-derived role claims under a key of their own, so
// they never overwrite anything the token itself asserted.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, ctxRoles, roles)
}

func UserID(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxUserID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func TokenKind(ctx context.Context) (TokenType, error) {
	if k, ok := ctx.Value(ctxTokenType).(TokenType); ok && k != "" {
		return k, nil
	}
	return "", errors.New("token_type not in context")
}

// Roles returns the injected role claims, nil when none were attached.
func Roles(ctx context.Context) []string {
	if r, ok := ctx.Value(ctxRoles).([]string); ok {
		return r
	}
	return nil
}
