package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"user-auth-server/internal/audit"
	"user-auth-server/internal/auth"
	"user-auth-server/internal/email"
	"user-auth-server/internal/users"
)

// Credential and token failures are recovered into these typed results and
// surfaced as rejections with no internal detail. Unknown-user and
// wrong-password deliberately share ErrInvalidCredentials.
var (
	ErrInvalidCredentials  = errors.New("authflow: invalid credentials")
	ErrEmailUnconfirmed    = errors.New("authflow: email not confirmed")
	ErrInvalidTokenType    = errors.New("authflow: invalid or wrong-type token")
	ErrUnknownUser         = errors.New("authflow: unknown user")
	ErrAlreadyConfirmed    = errors.New("authflow: email already confirmed")
	ErrInvalidConfirmToken = errors.New("authflow: invalid confirmation token")
)

// Service orchestrates the credential lifecycle: login issues a refresh
// token, refresh exchanges it for an access token with freshly derived
// roles, and the email-confirmation handshake gates login.
type Service struct {
	store      users.Store
	tokens     users.TokenStore
	codec      *auth.Manager
	hasher     *auth.Hasher
	sender     email.Sender
	confirmURL string
	auditor    *audit.Service
	log        *slog.Logger
}

func NewService(
	store users.Store,
	tokens users.TokenStore,
	codec *auth.Manager,
	hasher *auth.Hasher,
	sender email.Sender,
	confirmURL string,
	auditor *audit.Service,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:      store,
		tokens:     tokens,
		codec:      codec,
		hasher:     hasher,
		sender:     sender,
		confirmURL: confirmURL,
		auditor:    auditor,
		log:        log,
	}
}

// Login verifies credentials and mints a refresh token. The token carries no
// roles; those are derived later, at refresh and per request.
func (s *Service) Login(ctx context.Context, username, password string) (auth.SignedToken, error) {
	u, err := s.store.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return auth.SignedToken{}, ErrInvalidCredentials
		}
		return auth.SignedToken{}, err
	}

	switch s.hasher.Verify(u.PasswordHash, password) {
	case auth.VerifyFailed:
		return auth.SignedToken{}, ErrInvalidCredentials
	case auth.VerifySuccessRehash:
		// Stored hash uses an outdated work factor; upgrade transparently.
		s.rehashPassword(ctx, u.ID, password)
	}

	if !u.EmailConfirmed {
		return auth.SignedToken{}, ErrEmailUnconfirmed
	}

	tok, err := s.codec.CreateToken(auth.TokenTypeRefresh, u.ID)
	if err != nil {
		return auth.SignedToken{}, err
	}

	s.record(ctx, audit.EventTypeLogin, u.ID, "refresh token issued")
	return tok, nil
}

// RefreshResult carries the access token plus the user's current roles as
// response metadata. Roles are not embedded as signed claims; they would go
// stale until the next refresh, and the injector re-derives them per request
// anyway.
type RefreshResult struct {
	Token auth.SignedToken
	Roles []string
}

// Refresh exchanges a refresh token for an access token. Any token that does
// not verify as a refresh token is rejected the same way, including valid
// access tokens presented here.
func (s *Service) Refresh(ctx context.Context, rawToken string) (RefreshResult, error) {
	claims, err := s.codec.ReadToken(rawToken)
	if err != nil {
		return RefreshResult{}, ErrInvalidTokenType
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return RefreshResult{}, ErrInvalidTokenType
	}

	u, err := s.store.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return RefreshResult{}, ErrUnknownUser
		}
		return RefreshResult{}, err
	}

	// Fresh lookup: role changes since login must be reflected here.
	roles, err := s.store.Roles(ctx, u.ID)
	if err != nil {
		return RefreshResult{}, err
	}

	tok, err := s.codec.CreateToken(auth.TokenTypeAccess, u.ID)
	if err != nil {
		return RefreshResult{}, err
	}

	s.record(ctx, audit.EventTypeTokenRefresh, u.ID, "access token issued")
	return RefreshResult{Token: tok, Roles: roles}, nil
}

// RequestEmailConfirmation mints a confirmation token and mails its link.
// Unknown or already-confirmed addresses succeed silently with no side
// effect, so this channel cannot be used to enumerate accounts.
func (s *Service) RequestEmailConfirmation(ctx context.Context, emailAddr string) error {
	u, err := s.store.ByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.EmailConfirmed {
		return nil
	}

	token, err := s.tokens.Mint(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("mint confirmation token: %w", err)
	}

	confirmURL := email.ConfirmationURL(s.confirmURL, u.ID, token)
	if err := s.sender.Send(ctx, u.Email, confirmURL); err != nil {
		// Swallowed: surfacing transport failures would leak that the
		// address belongs to an account.
		s.log.Warn("confirmation email send failed", "user_id", u.ID, "err", err)
	}
	return nil
}

// ConfirmEmail consumes the confirmation token and marks the account
// confirmed. The token is single-use: a second confirm with the same token
// fails on the already-confirmed check before the store is ever consulted.
func (s *Service) ConfirmEmail(ctx context.Context, userID, token string) error {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUnknownUser
		}
		return err
	}
	if u.EmailConfirmed {
		return ErrAlreadyConfirmed
	}

	ok, err := s.tokens.Consume(ctx, userID, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidConfirmToken
	}

	if err := s.store.ConfirmEmail(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, audit.EventTypeEmailConfirmed, userID, "email confirmed")
	return nil
}

func (s *Service) rehashPassword(ctx context.Context, userID, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.store.SetPasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.log.Warn("password rehash failed", "user_id", userID, "err", err)
	}
}

func (s *Service) record(ctx context.Context, t audit.EventType, userID, msg string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, t, userID, msg); err != nil {
		s.log.Warn("audit append failed", "type", string(t), "err", err)
	}
}
