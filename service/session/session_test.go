package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/strooper/strooper-wallet/core"
)

type fakeSessionStore struct {
	sessions map[string]*core.Session
	attached map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: map[string]*core.Session{},
		attached: map[string]bool{},
	}
}

func (f *fakeSessionStore) Create(_ context.Context, session *core.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Find(_ context.Context, id string) (*core.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	clone := *session
	return &clone, nil
}

func (f *fakeSessionStore) AttachContract(_ context.Context, id, contractID string) error {
	if f.attached[id] {
		return errors.New("contract already attached")
	}

	f.attached[id] = true
	f.sessions[id].ContractID = contractID
	return nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeUserStore struct {
	user *core.User
}

func (f *fakeUserStore) Save(_ context.Context, user *core.User) (*core.User, error) {
	return f.user, nil
}

func (f *fakeUserStore) Find(_ context.Context, id string) (*core.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, core.ErrNotFound
	}

	return f.user, nil
}

func (f *fakeUserStore) FindTelegramID(_ context.Context, telegramID string) (*core.User, error) {
	if f.user == nil || f.user.TelegramID != telegramID {
		return nil, core.ErrNotFound
	}

	return f.user, nil
}

type fakeChain struct {
	envelope string
	err      error
}

func (f *fakeChain) LoadAccount(context.Context, string) (*core.Account, error) { return nil, nil }
func (f *fakeChain) SubmitTransaction(context.Context, string) (*core.TxResult, error) {
	return nil, nil
}
func (f *fakeChain) FundAccount(context.Context, string) error { return nil }
func (f *fakeChain) Operations(context.Context, string, int) ([]*core.Operation, error) {
	return nil, nil
}

func (f *fakeChain) BuildPayment(_ context.Context, from, to string, amountStroops int64) (string, error) {
	return f.envelope, f.err
}

func newService(store *fakeSessionStore, users *fakeUserStore, chain *fakeChain) core.SessionService {
	return New(store, users, chain, slog.Default())
}

func TestCreateIntent(t *testing.T) {
	store := newFakeSessionStore()
	users := &fakeUserStore{user: &core.User{ID: "u1", TelegramID: "tg1"}}
	svc := newService(store, users, &fakeChain{})

	session, err := svc.CreateIntent(context.Background(), "tg1")
	if err != nil {
		t.Fatal(err)
	}

	if session.Kind != core.SessionKindIntent {
		t.Errorf("Kind = %v, want intent", session.Kind)
	}
	if session.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", session.UserID)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl != core.SessionTTL {
		t.Errorf("ttl = %v, want %v", ttl, core.SessionTTL)
	}

	if _, err := svc.CreateIntent(context.Background(), "unknown"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown user: err = %v, want ErrNotFound", err)
	}
}

func TestCreatePayment(t *testing.T) {
	store := newFakeSessionStore()
	users := &fakeUserStore{user: &core.User{ID: "u1", TelegramID: "tg1"}}
	chain := &fakeChain{envelope: "AAAA...envelope"}
	svc := newService(store, users, chain)

	session, err := svc.CreatePayment(context.Background(), "tg1", "GPUB", 5_0000000, "GRECV")
	if err != nil {
		t.Fatal(err)
	}

	if session.Kind != core.SessionKindPayment {
		t.Errorf("Kind = %v, want payment", session.Kind)
	}
	if session.UnsignedXDR != chain.envelope {
		t.Errorf("UnsignedXDR = %q", session.UnsignedXDR)
	}
	if session.PublicKey != "GPUB" {
		t.Errorf("PublicKey = %q", session.PublicKey)
	}

	chain.err = errors.New("horizon down")
	if _, err := svc.CreatePayment(context.Background(), "tg1", "GPUB", 1, "GRECV"); err == nil {
		t.Error("expected build failure to propagate")
	}
}

func TestGet(t *testing.T) {
	store := newFakeSessionStore()
	users := &fakeUserStore{user: &core.User{ID: "u1", TelegramID: "tg1"}}
	svc := newService(store, users, &fakeChain{})

	session, err := svc.CreateIntent(context.Background(), "tg1")
	if err != nil {
		t.Fatal(err)
	}

	got, user, err := svc.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != session.ID || user.ID != "u1" {
		t.Errorf("Get() = (%q, %q)", got.ID, user.ID)
	}

	if _, _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing session: err = %v, want ErrNotFound", err)
	}

	store.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, _, err := svc.Get(context.Background(), session.ID); !errors.Is(err, core.ErrSessionExpired) {
		t.Errorf("expired session: err = %v, want ErrSessionExpired", err)
	}
}

func TestAttachContract(t *testing.T) {
	store := newFakeSessionStore()
	users := &fakeUserStore{user: &core.User{ID: "u1", TelegramID: "tg1"}}
	svc := newService(store, users, &fakeChain{})

	session, err := svc.CreateIntent(context.Background(), "tg1")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.AttachContract(context.Background(), session.ID, "CCONTRACT")
	if err != nil {
		t.Fatal(err)
	}
	if got.ContractID != "CCONTRACT" {
		t.Errorf("ContractID = %q", got.ContractID)
	}

	if _, err := svc.AttachContract(context.Background(), session.ID, "COTHER"); err == nil {
		t.Error("second attach should fail")
	}

	store.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.AttachContract(context.Background(), session.ID, "CLATE"); !errors.Is(err, core.ErrSessionExpired) {
		t.Errorf("expired attach: err = %v, want ErrSessionExpired", err)
	}
}
