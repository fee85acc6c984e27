package core

import (
	"context"
	"time"
)

// Signer maps a passkey credential (by its base64url credential id) to the
// smart-contract wallet it controls. One signer, one contract, forever:
// entries are written once at provisioning time and never updated.
type Signer struct {
	SignerID   string    `json:"signer_id,omitempty"`
	ContractID string    `json:"contract_id,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

type SignerStore interface {
	// Save is insert-only. A second insert for the same signer id with
	// the same contract id is reported as success; with a different
	// contract id it fails with ErrSignerExists. Uniqueness is enforced
	// by the storage layer, not by a read-then-write.
	Save(ctx context.Context, signer *Signer) error

	// Lookup resolves a signer id to its contract id, ErrNotFound when
	// unknown. Safe for attacker-controlled input: existence is the only
	// information revealed.
	Lookup(ctx context.Context, signerID string) (string, error)
}
