package authorizer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/strooper/strooper-wallet/core"
	"github.com/strooper/strooper-wallet/vault"
)

type fakeSmartAccounts struct {
	transfer string
	signed   string
}

func (f *fakeSmartAccounts) CreateWallet(context.Context, string, []byte, []byte) (*core.WalletProposal, error) {
	return nil, nil
}
func (f *fakeSmartAccounts) SubmitCreation(context.Context, string) (*core.TxResult, error) {
	return nil, nil
}
func (f *fakeSmartAccounts) RegisterSigner(context.Context, string, string) error { return nil }
func (f *fakeSmartAccounts) ConnectWallet(context.Context, string) (string, error) {
	return "", core.ErrNotFound
}
func (f *fakeSmartAccounts) AuthorizationPayload(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (f *fakeSmartAccounts) BuildTransfer(_ context.Context, from, to string, amount int64) (string, error) {
	return f.transfer, nil
}

func (f *fakeSmartAccounts) Sign(_ context.Context, unsignedXDR string, assertion *core.Assertion) (string, error) {
	return f.signed, nil
}

type fakeFunding struct {
	balance int64
}

func (f *fakeFunding) Balance(context.Context, string) (int64, error) { return f.balance, nil }
func (f *fakeFunding) Fund(context.Context, string) (*core.TxResult, error) {
	return &core.TxResult{Ok: true}, nil
}
func (f *fakeFunding) EnsureFaucet(context.Context) error { return nil }

type fakeChain struct {
	account   *core.Account
	submitted string
	funded    string
	fundErr   error
}

func (f *fakeChain) LoadAccount(context.Context, string) (*core.Account, error) {
	if f.account == nil {
		return nil, core.ErrNotFound
	}
	return f.account, nil
}

func (f *fakeChain) SubmitTransaction(_ context.Context, envelopeXDR string) (*core.TxResult, error) {
	f.submitted = envelopeXDR
	return &core.TxResult{Hash: "classic-hash", Ok: true}, nil
}

func (f *fakeChain) BuildPayment(context.Context, string, string, int64) (string, error) {
	return "", nil
}
func (f *fakeChain) FundAccount(_ context.Context, accountID string) error {
	f.funded = accountID
	return f.fundErr
}
func (f *fakeChain) Operations(context.Context, string, int) ([]*core.Operation, error) {
	return nil, nil
}

type fakeSoroban struct {
	sent  string
	final *core.TxResult
}

func (f *fakeSoroban) SendTransaction(_ context.Context, envelopeXDR string) (*core.TxResult, error) {
	f.sent = envelopeXDR
	return &core.TxResult{Hash: "soroban-hash", Ok: true}, nil
}

func (f *fakeSoroban) GetTransaction(context.Context, string) (*core.TxResult, error) {
	return f.final, nil
}

func (f *fakeSoroban) WaitTransaction(context.Context, string) (*core.TxResult, error) {
	return f.final, nil
}

func (f *fakeSoroban) SimulateTransaction(context.Context, string) (*core.Simulation, error) {
	return nil, nil
}

const testContract = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"

func newService(accounts core.SmartAccountService, funds core.FundingService, chainz core.ChainService, sorobanz core.SorobanService, v core.CredentialVault) core.AuthorizerService {
	return New(accounts, funds, chainz, sorobanz, v, Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
	}, slog.Default())
}

func TestBuildTransfer(t *testing.T) {
	accounts := &fakeSmartAccounts{transfer: "unsigned-envelope"}
	funds := &fakeFunding{balance: 10_0000000}
	svc := newService(accounts, funds, &fakeChain{}, &fakeSoroban{}, vault.New(vault.NewMemoryStorage()))

	got, err := svc.BuildTransfer(context.Background(), testContract, "GDEST", 5_0000000)
	if err != nil {
		t.Fatal(err)
	}
	if got != "unsigned-envelope" {
		t.Errorf("BuildTransfer() = %q", got)
	}

	if _, err := svc.BuildTransfer(context.Background(), testContract, "GDEST", 20_0000000); !errors.Is(err, core.ErrInsufficientBalance) {
		t.Errorf("over-balance transfer: err = %v, want ErrInsufficientBalance", err)
	}
}

func TestBuildTransferClassicalBalance(t *testing.T) {
	accounts := &fakeSmartAccounts{transfer: "unsigned-envelope"}
	chainz := &fakeChain{account: &core.Account{NativeBalance: 3_0000000}}
	svc := newService(accounts, &fakeFunding{}, chainz, &fakeSoroban{}, vault.New(vault.NewMemoryStorage()))

	from := keypair.MustRandom().Address()
	if _, err := svc.BuildTransfer(context.Background(), from, "GDEST", 1_0000000); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.BuildTransfer(context.Background(), from, "GDEST", 4_0000000); !errors.Is(err, core.ErrInsufficientBalance) {
		t.Errorf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestAuthorizeLegacy(t *testing.T) {
	signer := keypair.MustRandom()
	v := vault.New(vault.NewMemoryStorage())
	key := core.VaultKey{UserID: "u1", PublicKey: signer.Address()}

	if err := v.Seal(context.Background(), key, []byte("cred"), []byte(signer.Seed())); err != nil {
		t.Fatal(err)
	}

	source := txnbuild.NewSimpleAccount(signer.Address(), 7)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: keypair.MustRandom().Address(),
				Amount:      "1",
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
	})
	if err != nil {
		t.Fatal(err)
	}

	unsigned, err := tx.Base64()
	if err != nil {
		t.Fatal(err)
	}

	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, &fakeChain{}, &fakeSoroban{}, v)

	signedXDR, err := svc.AuthorizeLegacy(context.Background(), key, unsigned)
	if err != nil {
		t.Fatal(err)
	}

	generic, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		t.Fatal(err)
	}

	signed, ok := generic.Transaction()
	if !ok {
		t.Fatal("unexpected envelope type")
	}

	if len(signed.Signatures()) != 1 {
		t.Fatalf("signatures = %d, want 1", len(signed.Signatures()))
	}

	hash, err := signed.Hash(network.TestNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	if err := signer.Verify(hash[:], signed.Signatures()[0].Signature); err != nil {
		t.Errorf("signature does not verify against the sealed key: %v", err)
	}
}

func TestProvisionLegacy(t *testing.T) {
	v := vault.New(vault.NewMemoryStorage())
	chainz := &fakeChain{}
	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, chainz, &fakeSoroban{}, v)

	publicKey, err := svc.ProvisionLegacy(context.Background(), "u1", []byte("cred"))
	if err != nil {
		t.Fatal(err)
	}

	if chainz.funded != publicKey {
		t.Errorf("funded = %q, want %q", chainz.funded, publicKey)
	}

	key := core.VaultKey{UserID: "u1", PublicKey: publicKey}
	credentialID, err := v.CredentialID(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if string(credentialID) != "cred" {
		t.Errorf("credential id = %q", credentialID)
	}

	// The sealed seed must sign for the returned public key.
	source := txnbuild.NewSimpleAccount(publicKey, 3)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: keypair.MustRandom().Address(),
				Amount:      "1",
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
	})
	if err != nil {
		t.Fatal(err)
	}

	unsigned, err := tx.Base64()
	if err != nil {
		t.Fatal(err)
	}

	signedXDR, err := svc.AuthorizeLegacy(context.Background(), key, unsigned)
	if err != nil {
		t.Fatal(err)
	}

	generic, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		t.Fatal(err)
	}

	signed, ok := generic.Transaction()
	if !ok {
		t.Fatal("unexpected envelope type")
	}

	hash, err := signed.Hash(network.TestNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	verifier, err := keypair.ParseAddress(publicKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := verifier.Verify(hash[:], signed.Signatures()[0].Signature); err != nil {
		t.Errorf("signature does not verify against the provisioned key: %v", err)
	}
}

func TestProvisionLegacyFundFailure(t *testing.T) {
	v := vault.New(vault.NewMemoryStorage())
	chainz := &fakeChain{fundErr: errors.New("friendbot down")}
	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, chainz, &fakeSoroban{}, v)

	if _, err := svc.ProvisionLegacy(context.Background(), "u1", []byte("cred")); err == nil {
		t.Fatal("ProvisionLegacy() succeeded with funding down")
	}

	// The rollback leaves no sealed record behind.
	key := core.VaultKey{UserID: "u1", PublicKey: chainz.funded}
	if _, err := v.CredentialID(context.Background(), key); !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("err = %v, want ErrKeyMaterialMissing", err)
	}
}

func TestAuthorizeLegacyMissingMaterial(t *testing.T) {
	v := vault.New(vault.NewMemoryStorage())
	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, &fakeChain{}, &fakeSoroban{}, v)

	key := core.VaultKey{UserID: "u1", PublicKey: "GNOBODY"}
	if _, err := svc.AuthorizeLegacy(context.Background(), key, "AAAA"); !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("err = %v, want ErrKeyMaterialMissing", err)
	}
}

func TestSubmit(t *testing.T) {
	sorobanz := &fakeSoroban{final: &core.TxResult{Hash: "soroban-hash", Ok: true, Ledger: 12}}
	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, &fakeChain{}, sorobanz, vault.New(vault.NewMemoryStorage()))

	result, err := svc.Submit(context.Background(), "signed-envelope")
	if err != nil {
		t.Fatal(err)
	}

	if !result.Ok || result.Ledger != 12 {
		t.Errorf("Submit() = %+v", result)
	}
	if sorobanz.sent != "signed-envelope" {
		t.Errorf("sent = %q", sorobanz.sent)
	}
}

func TestSubmitClassic(t *testing.T) {
	chainz := &fakeChain{}
	svc := newService(&fakeSmartAccounts{}, &fakeFunding{}, chainz, &fakeSoroban{}, vault.New(vault.NewMemoryStorage()))

	result, err := svc.SubmitClassic(context.Background(), "signed-envelope")
	if err != nil {
		t.Fatal(err)
	}

	if result.Hash != "classic-hash" {
		t.Errorf("SubmitClassic() = %+v", result)
	}
	if chainz.submitted != "signed-envelope" {
		t.Errorf("submitted = %q", chainz.submitted)
	}
}
