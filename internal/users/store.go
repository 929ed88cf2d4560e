package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("users: not found")
	ErrUsernameTaken = errors.New("users: username taken")
	ErrEmailTaken    = errors.New("users: email taken")
)

// Store is the persistence contract for identity records.
//
// Lookups are atomic single-record reads; no method holds a lock or a
// long-lived resource across calls.
type Store interface {
	Create(ctx context.Context, u User) error
	ByID(ctx context.Context, id string) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error

	Roles(ctx context.Context, userID string) ([]string, error)
	AddRole(ctx context.Context, userID, role string) error

	SetPasswordHash(ctx context.Context, userID, hash string) error
	ConfirmEmail(ctx context.Context, userID string) error
}

// TokenStore mints and consumes single-use email confirmation tokens.
// A token is bound to one user and disappears on first successful consume.
type TokenStore interface {
	Mint(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, userID, token string) (bool, error)
}
