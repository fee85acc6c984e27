// Package funding owns the demo faucet: balance reads for contract
// wallets and fixed-amount seeding of fresh wallets.
package funding

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/strooper/strooper-wallet/core"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	NetworkPassphrase string `valid:"required"`

	// FaucetSeed pins the faucet keypair. Empty means a keypair derived
	// from the network and the current hour, so demo deployments share a
	// faucet without configuring one.
	FaucetSeed string `valid:"optional"`

	// FundAmount is the demo seed in stroops, 5 XLM when zero.
	FundAmount int64 `valid:"optional"`
}

const (
	defaultFundAmount = 5 * core.StroopsPerLumen

	// faucetReserve keeps the faucet above the network minimum balance
	// plus fees after a transfer.
	faucetReserve = 2 * core.StroopsPerLumen

	txTimeout = 180

	lastFundKey = "faucet/last_fund"
)

func New(
	chainz core.ChainService,
	sorobanz core.SorobanService,
	properties core.PropertyStore,
	cfg Config,
	logger *slog.Logger,
) core.FundingService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.FundAmount <= 0 {
		cfg.FundAmount = defaultFundAmount
	}

	return &service{
		chainz:     chainz,
		sorobanz:   sorobanz,
		properties: properties,
		cfg:        cfg,
		logger:     logger.With("service", "funding"),
	}
}

type service struct {
	chainz     core.ChainService
	sorobanz   core.SorobanService
	properties core.PropertyStore
	cfg        Config
	logger     *slog.Logger
	sf         singleflight.Group
}

// faucet resolves the faucet keypair. The derived fallback rotates hourly
// so leaked demo faucets go stale on their own.
func (s *service) faucet() (*keypair.Full, error) {
	if s.cfg.FaucetSeed != "" {
		return keypair.ParseFull(s.cfg.FaucetSeed)
	}

	hour := time.Now().UTC().Truncate(time.Hour).Format(time.RFC3339)
	raw := sha256.Sum256([]byte(s.cfg.NetworkPassphrase + "|faucet|" + hour))
	return keypair.FromRawSeed(raw)
}

func (s *service) Balance(ctx context.Context, contractID string) (int64, error) {
	faucet, err := s.faucet()
	if err != nil {
		return 0, err
	}

	source, err := s.sourceAccount(ctx, faucet)
	if err != nil {
		return 0, err
	}

	wallet, err := contractAddress(contractID)
	if err != nil {
		return 0, err
	}

	sac, err := s.nativeSAC()
	if err != nil {
		return 0, err
	}

	probe, err := buildInvoke(source, faucet.Address(), txnbuild.MinBaseFee, xdr.InvokeContractArgs{
		ContractAddress: sac,
		FunctionName:    "balance",
		Args:            []xdr.ScVal{addressVal(wallet)},
	}, nil, nil)
	if err != nil {
		return 0, err
	}

	probeXDR, err := probe.Base64()
	if err != nil {
		return 0, err
	}

	sim, err := s.sorobanz.SimulateTransaction(ctx, probeXDR)
	if err != nil {
		return 0, err
	}

	// An unfunded wallet has no balance entry and the simulation fails on
	// the missing ledger key. That reads as zero.
	if sim.Error != "" {
		s.logger.Debug("balance simulation failed, reading as zero", "contract", contractID)
		return 0, nil
	}

	return decodeBalance(sim.ResultXDR)
}

func (s *service) Fund(ctx context.Context, contractID string) (*core.TxResult, error) {
	result, err, _ := s.sf.Do("fund:"+contractID, func() (any, error) {
		return s.fund(ctx, contractID)
	})
	if err != nil {
		return nil, err
	}

	return result.(*core.TxResult), nil
}

func (s *service) fund(ctx context.Context, contractID string) (*core.TxResult, error) {
	faucet, err := s.faucet()
	if err != nil {
		return nil, err
	}

	if err := s.topUp(ctx, faucet); err != nil {
		return nil, err
	}

	account, err := s.chainz.LoadAccount(ctx, faucet.Address())
	if err != nil {
		return nil, err
	}

	wallet, err := contractAddress(contractID)
	if err != nil {
		return nil, err
	}

	sac, err := s.nativeSAC()
	if err != nil {
		return nil, err
	}

	from, err := accountAddress(faucet.Address())
	if err != nil {
		return nil, err
	}

	args := xdr.InvokeContractArgs{
		ContractAddress: sac,
		FunctionName:    "transfer",
		Args: []xdr.ScVal{
			addressVal(from),
			addressVal(wallet),
			i128Val(s.cfg.FundAmount),
		},
	}

	source := txnbuild.NewSimpleAccount(account.ID, account.Sequence)
	probe, err := buildInvoke(&source, faucet.Address(), txnbuild.MinBaseFee, args, nil, nil)
	if err != nil {
		return nil, err
	}

	probeXDR, err := probe.Base64()
	if err != nil {
		return nil, err
	}

	sim, err := s.sorobanz.SimulateTransaction(ctx, probeXDR)
	if err != nil {
		return nil, err
	}

	if sim.Error != "" {
		return nil, core.NewChainError("simulation_failed", sim.Error)
	}

	var sorobanData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData); err != nil {
		return nil, fmt.Errorf("decode soroban transaction data: %w", err)
	}

	auth, err := decodeAuth(sim.Auth)
	if err != nil {
		return nil, err
	}

	source = txnbuild.NewSimpleAccount(account.ID, account.Sequence)
	tx, err := buildInvoke(&source, faucet.Address(), txnbuild.MinBaseFee+sim.MinResourceFee, args, &sorobanData, auth)
	if err != nil {
		return nil, err
	}

	signed, err := tx.Sign(s.cfg.NetworkPassphrase, faucet)
	if err != nil {
		return nil, fmt.Errorf("sign funding transfer: %w", err)
	}

	envelope, err := signed.Base64()
	if err != nil {
		return nil, err
	}

	result, err := s.sorobanz.SendTransaction(ctx, envelope)
	if err != nil {
		return result, err
	}

	final, err := s.sorobanz.WaitTransaction(ctx, result.Hash)
	if err != nil {
		return nil, err
	}

	s.recordFunding(ctx, contractID, final)
	return final, nil
}

func (s *service) EnsureFaucet(ctx context.Context) error {
	faucet, err := s.faucet()
	if err != nil {
		return err
	}

	return s.topUp(ctx, faucet)
}

// topUp asks friendbot for lumens when the faucet cannot cover a transfer
// plus its own reserve. A brand new faucet account is created this way too.
func (s *service) topUp(ctx context.Context, faucet *keypair.Full) error {
	account, err := s.chainz.LoadAccount(ctx, faucet.Address())
	if errors.Is(err, core.ErrNotFound) {
		account = &core.Account{}
	} else if err != nil {
		return err
	}

	if core.HasEnoughBalance(account.NativeBalance, s.cfg.FundAmount+faucetReserve) {
		return nil
	}

	s.logger.Info("topping up faucet", "address", faucet.Address(), "balance", account.NativeBalance)
	if err := s.chainz.FundAccount(ctx, faucet.Address()); err != nil {
		return fmt.Errorf("top up faucet: %w", err)
	}

	return nil
}

func (s *service) recordFunding(ctx context.Context, contractID string, result *core.TxResult) {
	mark := map[string]any{
		"contract": contractID,
		"hash":     result.Hash,
		"ok":       result.Ok,
		"at":       time.Now().UTC(),
	}

	if err := s.properties.Set(ctx, lastFundKey, mark); err != nil {
		s.logger.Warn("record funding mark", "error", err)
	}
}

func (s *service) sourceAccount(ctx context.Context, faucet *keypair.Full) (*txnbuild.SimpleAccount, error) {
	account, err := s.chainz.LoadAccount(ctx, faucet.Address())
	if errors.Is(err, core.ErrNotFound) {
		// Simulation does not need a live account, only a well formed one.
		source := txnbuild.NewSimpleAccount(faucet.Address(), 0)
		return &source, nil
	} else if err != nil {
		return nil, err
	}

	source := txnbuild.NewSimpleAccount(account.ID, account.Sequence)
	return &source, nil
}

func (s *service) nativeSAC() (xdr.ScAddress, error) {
	native := xdr.MustNewNativeAsset()
	contractID, err := native.ContractID(s.cfg.NetworkPassphrase)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("derive native asset contract: %w", err)
	}

	hash := xdr.Hash(contractID)
	return xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &hash,
	}, nil
}

func buildInvoke(source *txnbuild.SimpleAccount, opSource string, fee int64, args xdr.InvokeContractArgs, sorobanData *xdr.SorobanTransactionData, auth []xdr.SorobanAuthorizationEntry) (*txnbuild.Transaction, error) {
	invoke := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type:           xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &args,
		},
		Auth:          auth,
		SourceAccount: opSource,
	}

	if sorobanData != nil {
		invoke.Ext = xdr.TransactionExt{V: 1, SorobanData: sorobanData}
	}

	return txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{invoke},
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(txTimeout)},
	})
}

func decodeAuth(encoded []string) ([]xdr.SorobanAuthorizationEntry, error) {
	var entries []xdr.SorobanAuthorizationEntry
	for _, raw := range encoded {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
			return nil, fmt.Errorf("decode authorization entry: %w", err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// decodeBalance unpacks the i128 the asset contract returns. Balances
// beyond int64 cannot occur for the native asset.
func decodeBalance(resultXDR string) (int64, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(resultXDR, &val); err != nil {
		return 0, fmt.Errorf("decode balance result: %w", err)
	}

	parts, ok := val.GetI128()
	if !ok {
		return 0, fmt.Errorf("unexpected balance result type %s", val.Type)
	}

	if parts.Hi != 0 || parts.Lo > 1<<63-1 {
		return 0, fmt.Errorf("balance out of range")
	}

	return int64(parts.Lo), nil
}

func contractAddress(contractID string) (xdr.ScAddress, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("decode contract address: %w", err)
	}

	var hash xdr.Hash
	copy(hash[:], raw)
	return xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &hash,
	}, nil
}

func accountAddress(address string) (xdr.ScAddress, error) {
	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("decode account address: %w", err)
	}

	return xdr.ScAddress{
		Type:      xdr.ScAddressTypeScAddressTypeAccount,
		AccountId: &accountID,
	}, nil
}

func addressVal(addr xdr.ScAddress) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}
}

func i128Val(v int64) xdr.ScVal {
	parts := xdr.Int128Parts{Hi: 0, Lo: xdr.Uint64(v)}
	if v < 0 {
		parts.Hi = -1
	}

	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}
