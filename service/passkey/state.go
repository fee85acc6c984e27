package passkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"github.com/strooper/strooper-wallet/core"
)

// ceremonyTTL bounds how long a Begin waits for its Finish.
const ceremonyTTL = 5 * time.Minute

type authorizationState struct {
	CredentialID []byte `json:"credential_id"`
	Challenge    []byte `json:"challenge"`
}

// StateStore parks ceremony state between Begin and Finish. Take reads are
// destructive so a response can only ever be checked once.
type StateStore interface {
	SaveRegistration(ctx context.Context, userID string, data *webauthn.SessionData) error
	TakeRegistration(ctx context.Context, userID string) (*webauthn.SessionData, error)
	SaveAuthorization(ctx context.Context, userID string, state *authorizationState) error
	TakeAuthorization(ctx context.Context, userID string) (*authorizationState, error)
}

func NewStateStore(client *redis.Client) StateStore {
	return &redisStateStore{client: client}
}

type redisStateStore struct {
	client *redis.Client
}

func registrationKey(userID string) string {
	return "passkey:reg:" + userID
}

func authorizationKey(userID string) string {
	return "passkey:auth:" + userID
}

func (s *redisStateStore) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, raw, ceremonyTTL).Err(); err != nil {
		return fmt.Errorf("save ceremony state: %w", err)
	}

	return nil
}

func (s *redisStateStore) take(ctx context.Context, key string, v any) error {
	raw, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("load ceremony state: %w", err)
	}

	return json.Unmarshal(raw, v)
}

func (s *redisStateStore) SaveRegistration(ctx context.Context, userID string, data *webauthn.SessionData) error {
	return s.save(ctx, registrationKey(userID), data)
}

func (s *redisStateStore) TakeRegistration(ctx context.Context, userID string) (*webauthn.SessionData, error) {
	var data webauthn.SessionData
	if err := s.take(ctx, registrationKey(userID), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func (s *redisStateStore) SaveAuthorization(ctx context.Context, userID string, state *authorizationState) error {
	return s.save(ctx, authorizationKey(userID), state)
}

func (s *redisStateStore) TakeAuthorization(ctx context.Context, userID string) (*authorizationState, error) {
	var state authorizationState
	if err := s.take(ctx, authorizationKey(userID), &state); err != nil {
		return nil, err
	}

	return &state, nil
}
