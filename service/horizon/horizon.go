package horizon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/txnbuild"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	NetworkPassphrase string `valid:"required"`
}

// paymentTimeout bounds how long a built payment stays signable: enough
// for the user to review and sign, short enough not to be replayable.
const paymentTimeout = 300

func New(client *horizonclient.Client, cfg Config, logger *slog.Logger) core.ChainService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &service{
		client: client,
		cfg:    cfg,
		logger: logger.With("service", "horizon"),
	}
}

type service struct {
	client *horizonclient.Client
	cfg    Config
	logger *slog.Logger
}

func (s *service) LoadAccount(ctx context.Context, accountID string) (*core.Account, error) {
	detail, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return nil, normalizeError(err)
	}

	acc := &core.Account{
		ID:            detail.AccountID,
		Sequence:      detail.Sequence,
		SubentryCount: detail.SubentryCount,
	}

	for _, b := range detail.Balances {
		if b.Asset.Type != "native" {
			continue
		}

		stroops, err := core.ToStroops(b.Balance)
		if err != nil {
			return nil, fmt.Errorf("parse native balance: %w", err)
		}

		acc.NativeBalance = stroops
	}

	return acc, nil
}

func (s *service) BuildPayment(ctx context.Context, from, to string, amountStroops int64) (string, error) {
	if amountStroops <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}

	account, err := s.LoadAccount(ctx, from)
	if err != nil {
		return "", err
	}

	source := txnbuild.NewSimpleAccount(account.ID, account.Sequence)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: to,
				Amount:      amount.StringFromInt64(amountStroops),
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(paymentTimeout)},
	})
	if err != nil {
		return "", fmt.Errorf("build payment: %w", err)
	}

	return tx.Base64()
}

func (s *service) SubmitTransaction(ctx context.Context, envelopeXDR string) (*core.TxResult, error) {
	resp, err := s.client.SubmitTransactionXDR(envelopeXDR)
	if err != nil {
		err = normalizeError(err)

		var chainErr *core.ChainError
		if ok := asChainError(err, &chainErr); ok {
			s.logger.Debug("submit rejected", "code", chainErr.Code)
			return &core.TxResult{Ok: false, Code: chainErr.Code, Message: chainErr.Message}, err
		}

		return nil, err
	}

	return &core.TxResult{Hash: resp.Hash, Ok: true, Ledger: resp.Ledger}, nil
}

func (s *service) FundAccount(ctx context.Context, accountID string) error {
	if _, err := s.client.Fund(accountID); err != nil {
		return normalizeError(err)
	}

	return nil
}
