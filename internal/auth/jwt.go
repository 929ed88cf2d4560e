package auth

import (
	"errors"
	"fmt"
	"time"

	"user-auth-server/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures are deliberately coarse at the HTTP boundary; these
// finer-grained sentinels exist for logging and tests.
var (
	ErrTokenMalformed = errors.New("auth: malformed token")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenSignature = errors.New("auth: token signature mismatch")
)

// SignedToken is a serialized JWT plus its expiry, which is returned to the
// client out-of-band so the client never needs to parse the token payload.
type SignedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// Manager mints and verifies the two token kinds.
//
// The signing key is process-wide configuration loaded once at startup and
// never rotated at runtime; rotating it invalidates all outstanding tokens.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      time.Now,
	}, nil
}

// CreateToken mints a signed token of the given kind for userID.
// Refresh tokens are long-lived and exchanged once for an access token;
// access tokens are short-lived and presented on every protected request.
func (m *Manager) CreateToken(kind TokenType, userID string) (SignedToken, error) {
	if userID == "" {
		return SignedToken{}, errors.New("auth: user id is required")
	}

	var ttl time.Duration
	switch kind {
	case TokenTypeRefresh:
		ttl = m.refreshTTL
	case TokenTypeAccess:
		ttl = m.accessTTL
	default:
		return SignedToken{}, fmt.Errorf("auth: unknown token type %q", kind)
	}

	now := m.clock().UTC()
	expires := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		UserID:    userID,
		TokenType: kind,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, ExpiresAt: expires}, nil
}

// ReadToken verifies signature and expiry and returns the claim set.
// The signature is checked before any claim is inspected; a token that fails
// verification never yields a partially-trusted claim set.
func (m *Manager) ReadToken(raw string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parser := jwt.NewParser(opts...)
	_, err := parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, classifyParseError(err)
	}

	if claims.UserID == "" || claims.TokenType == "" {
		return Claims{}, ErrTokenMalformed
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
