package core

import (
	"context"
	"time"
)

// Wallet is an on-chain identity owned by a user: either a classical
// account public key (G...) or a smart-contract wallet address (C...).
// Rows are insert-only; a user may hold several.
type Wallet struct {
	Address   string    `json:"address,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type WalletStore interface {
	Create(ctx context.Context, wallet *Wallet) error
	Find(ctx context.Context, address string) (*Wallet, error)
	ListUser(ctx context.Context, userID string) ([]*Wallet, error)
}
