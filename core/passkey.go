package core

import (
	"context"

	"github.com/go-webauthn/webauthn/protocol"
)

// Credential is the durable outcome of a registration ceremony: the raw
// credential id and the COSE public key the authenticator minted.
type Credential struct {
	ID        []byte `json:"id,omitempty"`
	PublicKey []byte `json:"public_key,omitempty"`
}

// PasskeyService drives the two WebAuthn ceremonies. Ceremony state lives
// server-side between Begin and Finish and expires on its own; a Finish
// without a matching Begin fails.
type PasskeyService interface {
	// BeginRegistration returns credential creation options demanding a
	// platform authenticator with user verification.
	BeginRegistration(ctx context.Context, user *User) (*protocol.CredentialCreation, error)

	// FinishRegistration verifies the authenticator's response. A declined
	// or failed ceremony surfaces ErrCredentialCreation.
	FinishRegistration(ctx context.Context, user *User, response *protocol.ParsedCredentialCreationData) (*Credential, error)

	// BeginAuthorization opens a get-assertion ceremony scoped to the
	// credential, with the caller-provided challenge. The challenge is the
	// transaction authorization payload, never a random nonce.
	BeginAuthorization(ctx context.Context, user *User, credentialID, challenge []byte) (*protocol.CredentialAssertion, error)

	// FinishAuthorization checks the assertion against the pending
	// ceremony and returns its raw artifacts for on-chain verification.
	// A declined ceremony surfaces ErrAuthorizationDenied.
	FinishAuthorization(ctx context.Context, user *User, response *protocol.ParsedCredentialAssertionData) (*Assertion, error)
}
