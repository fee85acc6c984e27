package user

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/strooper/strooper-wallet/core"
	"github.com/strooper/strooper-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.UserStore {
	return &userStore{db: db}
}

type userStore struct {
	db *nap.DB
}

var columns = []string{"id", "telegram_id", "username", "first_name", "last_name", "created_at"}

func (s *userStore) Save(ctx context.Context, user *core.User) (*core.User, error) {
	b := store.Builder.Insert("users").
		Columns("telegram_id", "username", "first_name", "last_name").
		Values(user.TelegramID, user.Username, user.FirstName, user.LastName).
		Suffix("ON CONFLICT (telegram_id) DO NOTHING")

	if _, err := b.RunWith(s.db).ExecContext(ctx); err != nil {
		return nil, err
	}

	return s.FindTelegramID(ctx, user.TelegramID)
}

func (s *userStore) Find(ctx context.Context, id string) (*core.User, error) {
	return s.findWhere(ctx, sq.Eq{"id": id})
}

func (s *userStore) FindTelegramID(ctx context.Context, telegramID string) (*core.User, error) {
	return s.findWhere(ctx, sq.Eq{"telegram_id": telegramID})
}

func (s *userStore) findWhere(ctx context.Context, pred any) (*core.User, error) {
	b := store.Builder.Select(columns...).From("users").Where(pred)
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var user core.User
	if err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt); err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}
