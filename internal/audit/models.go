package audit

import "time"

// Event is an immutable, append-only record of a security-relevant action.
//
// Invariants:
// - Events are never updated or deleted.
// - Audit is best-effort; auth flows must not fail on audit errors.
//
// Storage recommendation (Postgres): table auth_audit with an INSERT-only
// policy, optionally partitioned by time for retention.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the auth action being recorded.
	Type EventType `json:"type" db:"type"`

	// UserID is the subject account (not necessarily the caller: e.g. a
	// confirm-email request names the account being confirmed).
	UserID string `json:"user_id" db:"user_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin          EventType = "login"
	EventTypeTokenRefresh   EventType = "token_refresh"
	EventTypeEmailConfirmed EventType = "email_confirmed"
	EventTypeUserRegistered EventType = "user_registered"
	EventTypeUserDeleted    EventType = "user_deleted"
)
