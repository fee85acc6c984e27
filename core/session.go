package core

import (
	"context"
	"time"
)

type SessionKind uint8

const (
	_ SessionKind = iota
	SessionKindIntent
	SessionKindPayment
)

// SessionTTL bounds how long a handed-off session stays usable.
const SessionTTL = 10 * time.Minute

// Session bridges an in-app context and a full-browser ceremony. An intent
// session carries only the user; a payment session additionally carries a
// pre-built unsigned transaction. ContractID is attached at most once,
// after provisioning completes.
type Session struct {
	ID          string      `json:"id,omitempty"`
	UserID      string      `json:"user_id,omitempty"`
	Kind        SessionKind `json:"kind,omitempty"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at,omitempty"`
	UnsignedXDR string      `json:"unsigned_xdr,omitempty"`
	PublicKey   string      `json:"public_key,omitempty"`
	ContractID  string      `json:"contract_id,omitempty"`
}

func (s *Session) Expired(at time.Time) bool {
	return at.After(s.ExpiresAt)
}

type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)

	// AttachContract links a freshly provisioned wallet to the session.
	// It succeeds at most once per session; a second attach fails.
	AttachContract(ctx context.Context, id, contractID string) error

	// DeleteExpired prunes sessions whose expires_at is before the cutoff
	// and returns how many rows went away.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type SessionService interface {
	CreateIntent(ctx context.Context, telegramUserID string) (*Session, error)
	CreatePayment(ctx context.Context, telegramUserID, publicKey string, amountStroops int64, receiver string) (*Session, error)

	// Get returns the session and its owning user. Expired sessions fail
	// with ErrSessionExpired, unknown ids with ErrNotFound.
	Get(ctx context.Context, id string) (*Session, *User, error)
	AttachContract(ctx context.Context, id, contractID string) (*Session, error)
}
