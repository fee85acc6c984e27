package core

import "context"

// Account is the slice of a classical account this system cares about.
type Account struct {
	ID            string `json:"id,omitempty"`
	Sequence      int64  `json:"sequence,omitempty"`
	NativeBalance int64  `json:"native_balance"`
	SubentryCount int32  `json:"subentry_count,omitempty"`
}

// Operation is a human-readable view of an on-chain operation, for the
// wallet history screen.
type Operation struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Label     string `json:"label,omitempty"`
	Desc      string `json:"desc,omitempty"`
	Source    string `json:"source,omitempty"`
	AssetCode string `json:"asset_code,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TxResult is the normalized outcome of a transaction submission. Code and
// Message are only set on failure.
type TxResult struct {
	Hash    string `json:"hash,omitempty"`
	Ok      bool   `json:"ok"`
	Ledger  int32  `json:"ledger,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChainService wraps the Horizon-equivalent collaborator for classical
// account operations.
type ChainService interface {
	LoadAccount(ctx context.Context, accountID string) (*Account, error)
	SubmitTransaction(ctx context.Context, envelopeXDR string) (*TxResult, error)

	// BuildPayment builds an unsigned single-operation native payment
	// with the standard review window, returned as envelope XDR.
	BuildPayment(ctx context.Context, from, to string, amountStroops int64) (string, error)

	// FundAccount requests a faucet airdrop for the account (test networks).
	FundAccount(ctx context.Context, accountID string) error

	Operations(ctx context.Context, accountID string, limit int) ([]*Operation, error)
}

// Simulation is the collaborator's preflight result for a contract
// invocation.
type Simulation struct {
	ResultXDR       string
	Auth            []string
	TransactionData string
	MinResourceFee  int64
	LatestLedger    int64
	Error           string
}

// SorobanService wraps the contract-RPC collaborator.
type SorobanService interface {
	SendTransaction(ctx context.Context, envelopeXDR string) (*TxResult, error)
	GetTransaction(ctx context.Context, hash string) (*TxResult, error)

	// WaitTransaction polls GetTransaction until the transaction leaves
	// the not-found state or ctx is done.
	WaitTransaction(ctx context.Context, hash string) (*TxResult, error)

	SimulateTransaction(ctx context.Context, envelopeXDR string) (*Simulation, error)
}

// WalletProposal is the outcome of building (not yet submitting) a smart
// wallet deployment.
type WalletProposal struct {
	SignerID    string `json:"signer_id,omitempty"`
	ContractID  string `json:"contract_id,omitempty"`
	UnsignedXDR string `json:"unsigned_xdr,omitempty"`
}

// SmartAccountService builds and signs operations against factory-deployed
// smart-contract wallets.
type SmartAccountService interface {
	// CreateWallet derives the deterministic wallet address for the
	// credential and builds the unsigned factory deployment transaction.
	CreateWallet(ctx context.Context, label string, credentialID, publicKey []byte) (*WalletProposal, error)

	// SubmitCreation submits a previously built deployment. Failures are
	// retryable with the same proposal; the credential is not consumed.
	SubmitCreation(ctx context.Context, unsignedXDR string) (*TxResult, error)

	// RegisterSigner persists the signer-to-contract mapping. Idempotent:
	// repeating the same pair succeeds without a second row.
	RegisterSigner(ctx context.Context, signerID, contractID string) error

	// ConnectWallet recovers the contract address for a locally held
	// passkey, ErrNotFound when the signer was never registered.
	ConnectWallet(ctx context.Context, signerID string) (string, error)

	// BuildTransfer builds an unsigned native-asset transfer invocation
	// from a wallet (classical or contract) to any address.
	BuildTransfer(ctx context.Context, from, to string, amountStroops int64) (string, error)

	// AuthorizationPayload is the hash the wallet's signer must sign to
	// authorize the transaction; it becomes the assertion challenge.
	AuthorizationPayload(ctx context.Context, unsignedXDR string) ([]byte, error)

	// Sign attaches the verified assertion to the transaction's
	// authorization entry and returns the submittable envelope.
	Sign(ctx context.Context, unsignedXDR string, assertion *Assertion) (string, error)
}
