package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"user-auth-server/internal/auth"
	"user-auth-server/internal/config"
	"user-auth-server/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("users: invalid argument")
	ErrWeakPassword    = errors.New("users: password does not meet policy")
	ErrWrongPassword   = errors.New("users: wrong password")
)

const minPasswordLength = 8

// Service owns the identity record lifecycle: registration, profile update,
// password change and deletion. Password-affecting operations re-check the
// current password even when the caller holds a valid access token.
type Service struct {
	store  Store
	hasher *auth.Hasher
	clock  func() time.Time
}

func NewService(store Store, hasher *auth.Hasher) *Service {
	return &Service{store: store, hasher: hasher, clock: time.Now}
}

type Registration struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account with the default role and an unconfirmed
// email address. Login stays blocked until the email is confirmed.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	username := strings.TrimSpace(reg.Username)
	if username == "" {
		return User{}, ErrInvalidArgument
	}
	email, err := normalizeEmail(reg.Email)
	if err != nil {
		return User{}, ErrInvalidArgument
	}
	if err := validatePassword(reg.Password); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, u); err != nil {
		return User{}, err
	}
	if err := s.store.AddRole(ctx, u.ID, rbac.RoleUser); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.store.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

type Update struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password,omitempty"`
}

// Update changes the display name and, when a new password is provided, the
// password. The current password must verify in either case.
func (s *Service) Update(ctx context.Context, id string, upd Update) error {
	u, err := s.requirePassword(ctx, id, upd.CurrentPassword)
	if err != nil {
		return err
	}

	u.Name = strings.TrimSpace(upd.Name)
	u.UpdatedAt = s.clock().UTC()
	if err := s.store.Update(ctx, u); err != nil {
		return err
	}

	if upd.NewPassword != "" {
		if err := validatePassword(upd.NewPassword); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(upd.NewPassword)
		if err != nil {
			return err
		}
		return s.store.SetPasswordHash(ctx, id, hash)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id, currentPassword string) error {
	if _, err := s.requirePassword(ctx, id, currentPassword); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) requirePassword(ctx context.Context, id, password string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	u, err := s.store.ByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if s.hasher.Verify(u.PasswordHash, password) == auth.VerifyFailed {
		return User{}, ErrWrongPassword
	}
	return u, nil
}

// Seed creates the configured power user if it does not exist yet, with a
// confirmed email and every allowed role.
func (s *Service) Seed(ctx context.Context, cfg config.SeedConfig, roles []string) error {
	if cfg.Username == "" {
		return nil
	}

	if _, err := s.store.ByUsername(ctx, cfg.Username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	now := s.clock().UTC()
	u := User{
		ID:             uuid.NewString(),
		Username:       cfg.Username,
		Name:           cfg.Name,
		Email:          cfg.Email,
		EmailConfirmed: true,
		PasswordHash:   hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, role := range roles {
		if err := s.store.AddRole(ctx, u.ID, role); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", errors.New("empty email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return strings.ToLower(email), nil
}

func validatePassword(pw string) error {
	if len([]rune(pw)) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
