package core

import "context"

// VaultKey is the composite key a credential record lives under. Scoping
// by both owner and public key keeps records from colliding when several
// users share a device.
type VaultKey struct {
	UserID    string
	PublicKey string
}

// Assertion carries the raw artifacts of a verified WebAuthn get-assertion
// ceremony, as the smart-account contract wants to see them.
type Assertion struct {
	CredentialID      []byte
	AuthenticatorData []byte
	ClientDataJSON    []byte
	Signature         []byte
}

// CredentialVault seals secret key material under a wrapping key and only
// ever exposes it inside a scoped call. The four record pieces (credential
// id, wrapping key, ciphertext, nonce) are written together or not at all;
// a partial record fails every operation with ErrKeyMaterialMissing.
type CredentialVault interface {
	// Seal stores credentialID alongside secret encrypted under a fresh
	// wrapping key. Overwrites any previous record for the same key.
	Seal(ctx context.Context, key VaultKey, credentialID, secret []byte) error

	// CredentialID returns the stored WebAuthn credential id, needed to
	// scope the assertion ceremony before Open may be called.
	CredentialID(ctx context.Context, key VaultKey) ([]byte, error)

	// Open decrypts the sealed secret and hands it to use. The plaintext
	// is wiped when use returns; it must not escape the closure.
	Open(ctx context.Context, key VaultKey, use func(secret []byte) error) error

	Drop(ctx context.Context, key VaultKey) error
}
