package signer

import (
	"context"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/strooper/strooper-wallet/core"
	"github.com/strooper/strooper-wallet/store"
	"github.com/tsenart/nap"
	"github.com/zyedidia/generic/cache"
)

func New(db *nap.DB) core.SignerStore {
	return &signerStore{
		db:        db,
		contracts: cache.New[string, string](1024),
	}
}

type signerStore struct {
	db *nap.DB

	// registry rows are immutable, so positive lookups cache forever
	contracts *cache.Cache[string, string]
	mux       sync.Mutex
}

func (s *signerStore) Save(ctx context.Context, signer *core.Signer) error {
	b := store.Builder.Insert("signers").
		Columns("signer_id", "contract_id").
		Values(signer.SignerID, signer.ContractID)

	if _, err := b.RunWith(s.db).ExecContext(ctx); err != nil {
		if !store.IsErrUniqueViolation(err) {
			return err
		}

		// re-registering the same pair is a no-op; a different
		// contract for an existing signer violates the invariant
		existing, lookupErr := s.Lookup(ctx, signer.SignerID)
		if lookupErr != nil {
			return lookupErr
		}

		if existing != signer.ContractID {
			return core.ErrSignerExists
		}

		return nil
	}

	s.mux.Lock()
	s.contracts.Put(signer.SignerID, signer.ContractID)
	s.mux.Unlock()

	return nil
}

func (s *signerStore) Lookup(ctx context.Context, signerID string) (string, error) {
	s.mux.Lock()
	v, ok := s.contracts.Get(signerID)
	s.mux.Unlock()

	if ok {
		return v, nil
	}

	b := store.Builder.Select("contract_id").From("signers").Where(sq.Eq{"signer_id": signerID})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var contractID string
	if err := row.Scan(&contractID); err != nil {
		if store.IsErrNotFound(err) {
			return "", core.ErrNotFound
		}

		return "", err
	}

	s.mux.Lock()
	s.contracts.Put(signerID, contractID)
	s.mux.Unlock()

	return contractID, nil
}
