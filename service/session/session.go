// Package session hands off provisioning and payment flows from the
// mini-app context to a full browser, where the passkey ceremonies can run.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strooper/strooper-wallet/core"
)

func New(
	sessions core.SessionStore,
	users core.UserStore,
	chainz core.ChainService,
	logger *slog.Logger,
) core.SessionService {
	return &service{
		sessions: sessions,
		users:    users,
		chainz:   chainz,
		logger:   logger.With("service", "session"),
	}
}

type service struct {
	sessions core.SessionStore
	users    core.UserStore
	chainz   core.ChainService
	logger   *slog.Logger
}

func (s *service) create(ctx context.Context, telegramUserID string, build func(user *core.User, session *core.Session) error) (*core.Session, error) {
	user, err := s.users.FindTelegramID(ctx, telegramUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &core.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(core.SessionTTL),
	}

	if err := build(user, session); err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session created", "session", session.ID, "kind", session.Kind, "user", user.ID)
	return session, nil
}

func (s *service) CreateIntent(ctx context.Context, telegramUserID string) (*core.Session, error) {
	return s.create(ctx, telegramUserID, func(_ *core.User, session *core.Session) error {
		session.Kind = core.SessionKindIntent
		return nil
	})
}

func (s *service) CreatePayment(ctx context.Context, telegramUserID, publicKey string, amountStroops int64, receiver string) (*core.Session, error) {
	return s.create(ctx, telegramUserID, func(_ *core.User, session *core.Session) error {
		envelope, err := s.chainz.BuildPayment(ctx, publicKey, receiver, amountStroops)
		if err != nil {
			return fmt.Errorf("build payment: %w", err)
		}

		session.Kind = core.SessionKindPayment
		session.PublicKey = publicKey
		session.UnsignedXDR = envelope
		return nil
	})
}

func (s *service) Get(ctx context.Context, id string) (*core.Session, *core.User, error) {
	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if session.Expired(time.Now()) {
		return nil, nil, core.ErrSessionExpired
	}

	user, err := s.users.Find(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

func (s *service) AttachContract(ctx context.Context, id, contractID string) (*core.Session, error) {
	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		return nil, core.ErrSessionExpired
	}

	if err := s.sessions.AttachContract(ctx, id, contractID); err != nil {
		return nil, err
	}

	session.ContractID = contractID
	return session, nil
}
