package core

import (
	"context"
	"time"
)

// User anchors wallets and sessions to an external Telegram identity.
// TelegramID is immutable after first contact.
type User struct {
	ID         string    `json:"id,omitempty"`
	TelegramID string    `json:"telegram_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}

	return u.FirstName + " " + u.LastName
}

type UserStore interface {
	// Save inserts the user or returns the existing row for the same
	// telegram id. The external id never changes once written.
	Save(ctx context.Context, user *User) (*User, error)
	Find(ctx context.Context, id string) (*User, error)
	FindTelegramID(ctx context.Context, telegramID string) (*User, error)
}
