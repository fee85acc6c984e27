// Package authorizer orchestrates transfer signing and submission for
// both wallet generations: passkey-controlled contract wallets and
// vault-sealed classical keypairs.
package authorizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	NetworkPassphrase string `valid:"required"`
}

func New(
	accounts core.SmartAccountService,
	funds core.FundingService,
	chainz core.ChainService,
	sorobanz core.SorobanService,
	vault core.CredentialVault,
	cfg Config,
	logger *slog.Logger,
) core.AuthorizerService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &service{
		accounts: accounts,
		funds:    funds,
		chainz:   chainz,
		sorobanz: sorobanz,
		vault:    vault,
		cfg:      cfg,
		logger:   logger.With("service", "authorizer"),
	}
}

type service struct {
	accounts core.SmartAccountService
	funds    core.FundingService
	chainz   core.ChainService
	sorobanz core.SorobanService
	vault    core.CredentialVault
	cfg      Config
	logger   *slog.Logger
}

func (s *service) BuildTransfer(ctx context.Context, from, to string, amountStroops int64) (string, error) {
	balance, err := s.balance(ctx, from)
	if err != nil {
		return "", err
	}

	if !core.HasEnoughBalance(balance, amountStroops) {
		return "", core.ErrInsufficientBalance
	}

	return s.accounts.BuildTransfer(ctx, from, to, amountStroops)
}

// balance reads from whichever side of the chain the wallet lives on.
func (s *service) balance(ctx context.Context, address string) (int64, error) {
	if strkey.IsValidContractAddress(address) {
		return s.funds.Balance(ctx, address)
	}

	account, err := s.chainz.LoadAccount(ctx, address)
	if err != nil {
		return 0, err
	}

	return account.NativeBalance, nil
}

func (s *service) Authorize(ctx context.Context, unsignedXDR string, assertion *core.Assertion) (string, error) {
	return s.accounts.Sign(ctx, unsignedXDR, assertion)
}

func (s *service) ProvisionLegacy(ctx context.Context, userID string, credentialID []byte) (string, error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", fmt.Errorf("generate keypair: %w", err)
	}

	key := core.VaultKey{UserID: userID, PublicKey: kp.Address()}
	if err := s.vault.Seal(ctx, key, credentialID, []byte(kp.Seed())); err != nil {
		return "", err
	}

	if err := s.chainz.FundAccount(ctx, kp.Address()); err != nil {
		_ = s.vault.Drop(ctx, key)
		return "", fmt.Errorf("fund account: %w", err)
	}

	s.logger.Info("legacy wallet provisioned", "user", userID, "address", kp.Address())

	return kp.Address(), nil
}

func (s *service) AuthorizeLegacy(ctx context.Context, key core.VaultKey, unsignedXDR string) (string, error) {
	var signedXDR string

	err := s.vault.Open(ctx, key, func(secret []byte) error {
		kp, err := keypair.ParseFull(string(secret))
		if err != nil {
			return fmt.Errorf("parse sealed key: %w", err)
		}

		generic, err := txnbuild.TransactionFromXDR(unsignedXDR)
		if err != nil {
			return fmt.Errorf("parse envelope: %w", err)
		}

		tx, ok := generic.Transaction()
		if !ok {
			return fmt.Errorf("unexpected envelope type")
		}

		signed, err := tx.Sign(s.cfg.NetworkPassphrase, kp)
		if err != nil {
			return fmt.Errorf("sign envelope: %w", err)
		}

		signedXDR, err = signed.Base64()
		return err
	})
	if err != nil {
		return "", err
	}

	return signedXDR, nil
}

func (s *service) Submit(ctx context.Context, signedXDR string) (*core.TxResult, error) {
	result, err := s.sorobanz.SendTransaction(ctx, signedXDR)
	if err != nil {
		return result, err
	}

	final, err := s.sorobanz.WaitTransaction(ctx, result.Hash)
	if err != nil {
		return nil, err
	}

	if !final.Ok {
		s.logger.Info("submission failed", "hash", final.Hash, "code", final.Code)
	}

	return final, nil
}

func (s *service) SubmitClassic(ctx context.Context, signedXDR string) (*core.TxResult, error) {
	return s.chainz.SubmitTransaction(ctx, signedXDR)
}
