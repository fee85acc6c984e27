package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/strooper/strooper-wallet/core"
	"github.com/strooper/strooper-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.SessionStore {
	return &sessionStore{db: db}
}

type sessionStore struct {
	db *nap.DB
}

var columns = []string{"id", "user_id", "kind", "created_at", "expires_at", "unsigned_xdr", "public_key", "contract_id"}

func (s *sessionStore) Create(ctx context.Context, session *core.Session) error {
	b := store.Builder.Insert("sessions").
		Columns("id", "user_id", "kind", "created_at", "expires_at", "unsigned_xdr", "public_key").
		Values(session.ID, session.UserID, session.Kind, session.CreatedAt, session.ExpiresAt, session.UnsignedXDR, session.PublicKey)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *sessionStore) Find(ctx context.Context, id string) (*core.Session, error) {
	b := store.Builder.Select(columns...).From("sessions").Where(sq.Eq{"id": id})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var (
		session     core.Session
		unsignedXDR sql.NullString
		publicKey   sql.NullString
		contractID  sql.NullString
	)

	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Kind,
		&session.CreatedAt,
		&session.ExpiresAt,
		&unsignedXDR,
		&publicKey,
		&contractID,
	); err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	session.UnsignedXDR = unsignedXDR.String
	session.PublicKey = publicKey.String
	session.ContractID = contractID.String
	return &session, nil
}

func (s *sessionStore) AttachContract(ctx context.Context, id, contractID string) error {
	b := store.Builder.Update("sessions").
		Set("contract_id", contractID).
		Where(sq.Eq{"id": id}).
		Where("contract_id IS NULL")

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("session %s missing or contract already attached", id)
	}

	return nil
}

func (s *sessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	b := store.Builder.Delete("sessions").Where(sq.Lt{"expires_at": before})

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
