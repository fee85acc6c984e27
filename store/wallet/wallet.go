package wallet

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/strooper/strooper-wallet/core"
	"github.com/strooper/strooper-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.WalletStore {
	wallets, err := lru.New[string, *core.Wallet](256)
	if err != nil {
		panic(err)
	}

	return &walletStore{
		db:      db,
		wallets: wallets,
	}
}

type walletStore struct {
	db      *nap.DB
	wallets *lru.Cache[string, *core.Wallet]
}

var columns = []string{"address", "user_id", "label", "created_at"}

func (s *walletStore) Create(ctx context.Context, wallet *core.Wallet) error {
	b := store.Builder.Insert("wallets").
		Columns("address", "user_id", "label").
		Values(wallet.Address, wallet.UserID, wallet.Label)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *walletStore) Find(ctx context.Context, address string) (*core.Wallet, error) {
	if w, ok := s.wallets.Get(address); ok {
		return w, nil
	}

	w, err := s.find(ctx, address)
	if err != nil {
		return nil, err
	}

	s.wallets.Add(address, w)
	return w, nil
}

func (s *walletStore) find(ctx context.Context, address string) (*core.Wallet, error) {
	b := store.Builder.Select(columns...).From("wallets").Where(sq.Eq{"address": address})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var wallet core.Wallet
	if err := scanWallet(row, &wallet); err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &wallet, nil
}

func (s *walletStore) ListUser(ctx context.Context, userID string) ([]*core.Wallet, error) {
	b := store.Builder.Select(columns...).
		From("wallets").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at")

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var wallets []*core.Wallet
	for rows.Next() {
		var wallet core.Wallet
		if err := scanWallet(rows, &wallet); err != nil {
			return nil, err
		}

		wallets = append(wallets, &wallet)
	}

	return wallets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWallet(sc scanner, wallet *core.Wallet) error {
	return sc.Scan(&wallet.Address, &wallet.UserID, &wallet.Label, &wallet.CreatedAt)
}
