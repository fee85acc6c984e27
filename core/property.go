package core

import "context"

// PropertyStore is a small versioned key/value used for operational
// bookkeeping (faucet top-up markers and the like).
type PropertyStore interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any) error
}
