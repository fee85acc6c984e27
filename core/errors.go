package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores and services when the requested
	// entity does not exist. It carries no more information than that.
	ErrNotFound = errors.New("not found")

	// ErrSessionExpired is returned when a session is fetched after its
	// expires_at. Expired sessions are never served, only reaped.
	ErrSessionExpired = errors.New("session expired")

	// ErrSignerExists is returned when a signer id is registered a second
	// time against a different contract.
	ErrSignerExists = errors.New("signer already registered")

	// ErrCredentialCreation means the platform declined the credential
	// creation ceremony. Retryable by the user.
	ErrCredentialCreation = errors.New("credential creation rejected")

	// ErrAuthorizationDenied means the authenticator rejected or the user
	// cancelled the assertion ceremony.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrKeyMaterialMissing means the vault record is incomplete. Not
	// retryable without re-provisioning.
	ErrKeyMaterialMissing = errors.New("key material missing")

	// ErrInsufficientBalance is the advisory pre-submission guard. The
	// chain remains the final arbiter.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ChainError wraps a transaction result code from the chain with the
// user-facing message it maps to.
type ChainError struct {
	Code    string
	Message string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain: %s (%s)", e.Message, e.Code)
}

func NewChainError(code, message string) *ChainError {
	return &ChainError{Code: code, Message: message}
}
