package core

import "context"

// FundingService reads contract wallet balances and seeds demo funds from
// a faucet-controlled classical account.
type FundingService interface {
	// Balance is the wallet's native balance in stroops. A wallet with no
	// balance entry yet reads as zero, not as an error.
	Balance(ctx context.Context, contractID string) (int64, error)

	// Fund transfers the fixed demo amount from the faucet into the
	// target wallet, topping the faucet itself up first when it would run
	// short. Concurrent calls for the same target coalesce.
	Fund(ctx context.Context, contractID string) (*TxResult, error)

	// EnsureFaucet tops the faucet account up ahead of demand so the
	// first Fund of the hour does not pay the friendbot round trip.
	EnsureFaucet(ctx context.Context) error
}
