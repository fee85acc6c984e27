package core

import "context"

// AuthorizerService turns an unsigned transfer into a submitted one. Two
// signing paths exist: the smart-account path attaches a passkey assertion
// to the invocation's authorization entry, the legacy path signs with a
// sealed classical secret key.
type AuthorizerService interface {
	// BuildTransfer builds an unsigned native transfer from a wallet.
	// Fails early with ErrInsufficientBalance when the wallet cannot
	// cover the amount.
	BuildTransfer(ctx context.Context, from, to string, amountStroops int64) (string, error)

	// Authorize attaches the verified assertion and returns a submittable
	// envelope.
	Authorize(ctx context.Context, unsignedXDR string, assertion *Assertion) (string, error)

	// ProvisionLegacy generates a classical keypair, seals its seed
	// under the user's vault key with the given credential id and
	// activates the account through the faucet. A funding failure rolls
	// the sealed record back so the call can be retried cleanly.
	ProvisionLegacy(ctx context.Context, userID string, credentialID []byte) (string, error)

	// AuthorizeLegacy signs the envelope with the vault-sealed classical
	// key. The secret never leaves the signing closure.
	AuthorizeLegacy(ctx context.Context, key VaultKey, unsignedXDR string) (string, error)

	// Submit sends a contract invocation and waits for finality.
	Submit(ctx context.Context, signedXDR string) (*TxResult, error)

	// SubmitClassic sends a classical payment through the horizon path.
	SubmitClassic(ctx context.Context, signedXDR string) (*TxResult, error)
}
