// Package smartaccount builds, authorizes and submits operations against
// factory-deployed smart-contract wallets controlled by passkey signers.
package smartaccount

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/strooper/strooper-wallet/core"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	NetworkPassphrase string `valid:"required"`
	FactoryContract   string `valid:"stellar_contract,required"`
	DeployerSeed      string `valid:"required"`
}

const (
	// txTimeout bounds how long a built invocation stays valid. Long
	// enough for a passkey ceremony plus user hesitation.
	txTimeout = 180

	// signatureLedgers is how many ledgers past the simulation tip an
	// authorization signature stays valid, roughly five minutes.
	signatureLedgers = 60
)

func init() {
	govalidator.TagMap["stellar_contract"] = func(str string) bool {
		_, err := contractHash(str)
		return err == nil
	}
}

func New(
	chainz core.ChainService,
	sorobanz core.SorobanService,
	signers core.SignerStore,
	cfg Config,
	logger *slog.Logger,
) core.SmartAccountService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	deployer, err := keypair.ParseFull(cfg.DeployerSeed)
	if err != nil {
		panic(fmt.Errorf("parse deployer seed: %w", err))
	}

	return &service{
		chainz:   chainz,
		sorobanz: sorobanz,
		signers:  signers,
		cfg:      cfg,
		deployer: deployer,
		logger:   logger.With("service", "smartaccount"),
	}
}

type service struct {
	chainz   core.ChainService
	sorobanz core.SorobanService
	signers  core.SignerStore
	cfg      Config
	deployer *keypair.Full
	logger   *slog.Logger
	sf       singleflight.Group
}

// SignerID derives the registry key for a credential: the base64url raw
// credential id, the same form the browser reports it in.
func SignerID(credentialID []byte) string {
	return base64.RawURLEncoding.EncodeToString(credentialID)
}

func (s *service) CreateWallet(ctx context.Context, label string, credentialID, publicKey []byte) (*core.WalletProposal, error) {
	signerID := SignerID(credentialID)
	salt := sha256.Sum256(credentialID)

	contractID, err := deriveContractID(s.cfg.FactoryContract, salt, s.cfg.NetworkPassphrase)
	if err != nil {
		return nil, err
	}

	rawKey, err := uncompressedPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decode credential public key: %w", err)
	}

	factory, err := contractHash(s.cfg.FactoryContract)
	if err != nil {
		return nil, err
	}

	invoke := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: xdr.ScAddress{
					Type:       xdr.ScAddressTypeScAddressTypeContract,
					ContractId: &factory,
				},
				FunctionName: "deploy",
				Args: []xdr.ScVal{
					bytesVal(salt[:]),
					bytesVal(rawKey),
				},
			},
		},
		SourceAccount: s.deployer.Address(),
	}

	envelope, err := s.buildInvocation(ctx, invoke, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet proposal built", "signer", signerID, "contract", contractID, "label", label)

	return &core.WalletProposal{
		SignerID:    signerID,
		ContractID:  contractID,
		UnsignedXDR: envelope,
	}, nil
}

func (s *service) SubmitCreation(ctx context.Context, unsignedXDR string) (*core.TxResult, error) {
	envelope, err := parseEnvelope(unsignedXDR)
	if err != nil {
		return nil, err
	}

	signed, err := s.signEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	result, err := s.sorobanz.SendTransaction(ctx, signed)
	if err != nil {
		return result, err
	}

	return s.sorobanz.WaitTransaction(ctx, result.Hash)
}

func (s *service) RegisterSigner(ctx context.Context, signerID, contractID string) error {
	_, err, _ := s.sf.Do("register:"+signerID, func() (any, error) {
		return nil, s.signers.Save(ctx, &core.Signer{
			SignerID:   signerID,
			ContractID: contractID,
		})
	})

	return err
}

func (s *service) ConnectWallet(ctx context.Context, signerID string) (string, error) {
	return s.signers.Lookup(ctx, signerID)
}

func (s *service) BuildTransfer(ctx context.Context, from, to string, amountStroops int64) (string, error) {
	if amountStroops <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}

	fromAddr, err := scAddress(from)
	if err != nil {
		return "", err
	}

	toAddr, err := scAddress(to)
	if err != nil {
		return "", err
	}

	sac, err := s.nativeSAC()
	if err != nil {
		return "", err
	}

	invoke := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: sac,
				FunctionName:    "transfer",
				Args: []xdr.ScVal{
					addressVal(fromAddr),
					addressVal(toAddr),
					i128Val(amountStroops),
				},
			},
		},
		SourceAccount: s.deployer.Address(),
	}

	return s.buildInvocation(ctx, invoke, nil)
}

// nativeSAC is the Stellar Asset Contract address of the native asset on
// the configured network.
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

// buildInvocation assembles a single InvokeHostFunction transaction,
// simulates it, and rebuilds it with the resource footprint, fee bump and
// authorization entries the simulation produced.
func (s *service) buildInvocation(ctx context.Context, invoke *txnbuild.InvokeHostFunction, auth []xdr.SorobanAuthorizationEntry) (string, error) {
	account, err := s.chainz.LoadAccount(ctx, s.deployer.Address())
	if err != nil {
		return "", fmt.Errorf("load deployer account: %w", err)
	}

	build := func(fee int64) (*txnbuild.Transaction, error) {
		source := txnbuild.NewSimpleAccount(account.ID, account.Sequence)
		return txnbuild.NewTransaction(txnbuild.TransactionParams{
			SourceAccount:        &source,
			IncrementSequenceNum: true,
			Operations:           []txnbuild.Operation{invoke},
			BaseFee:              fee,
			Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(txTimeout)},
		})
	}

	probe, err := build(txnbuild.MinBaseFee)
	if err != nil {
		return "", fmt.Errorf("build invocation: %w", err)
	}

	probeXDR, err := probe.Base64()
	if err != nil {
		return "", err
	}

	sim, err := s.sorobanz.SimulateTransaction(ctx, probeXDR)
	if err != nil {
		return "", err
	}

	if sim.Error != "" {
		return "", core.NewChainError("simulation_failed", sim.Error)
	}

	var sorobanData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData); err != nil {
		return "", fmt.Errorf("decode soroban transaction data: %w", err)
	}

	invoke.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}

	if auth == nil {
		auth, err = decodeAuthEntries(sim.Auth, int64(sim.LatestLedger)+signatureLedgers)
		if err != nil {
			return "", err
		}
	}

	invoke.Auth = auth

	prepared, err := build(txnbuild.MinBaseFee + sim.MinResourceFee)
	if err != nil {
		return "", fmt.Errorf("rebuild invocation: %w", err)
	}

	return prepared.Base64()
}

// decodeAuthEntries parses simulated authorization entries and stamps the
// signature expiration ledger on the address-credentialed ones, so the
// authorization payload is final before the signer sees it.
func decodeAuthEntries(encoded []string, expirationLedger int64) ([]xdr.SorobanAuthorizationEntry, error) {
	var entries []xdr.SorobanAuthorizationEntry
	for _, raw := range encoded {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
			return nil, fmt.Errorf("decode authorization entry: %w", err)
		}

		if entry.Credentials.Type == xdr.SorobanCredentialsTypeSorobanCredentialsAddress {
			entry.Credentials.Address.SignatureExpirationLedger = xdr.Uint32(expirationLedger)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// signEnvelope signs the envelope with the deployer key, which pays the
// fee for every invocation this service builds. Works on the raw envelope
// so the soroban footprint and auth entries survive untouched.
func (s *service) signEnvelope(envelope *xdr.TransactionEnvelope) (string, error) {
	hash, err := network.HashTransactionInEnvelope(*envelope, s.cfg.NetworkPassphrase)
	if err != nil {
		return "", fmt.Errorf("hash envelope: %w", err)
	}

	sig, err := s.deployer.SignDecorated(hash[:])
	if err != nil {
		return "", fmt.Errorf("sign envelope: %w", err)
	}

	envelope.V1.Signatures = append(envelope.V1.Signatures, sig)
	return xdr.MarshalBase64(*envelope)
}

func parseEnvelope(envelopeXDR string) (*xdr.TransactionEnvelope, error) {
	var envelope xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(envelopeXDR, &envelope); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	if envelope.Type != xdr.EnvelopeTypeEnvelopeTypeTx {
		return nil, fmt.Errorf("unexpected envelope type %s", envelope.Type)
	}

	return &envelope, nil
}
