// Package soroban is a thin JSON-RPC client for the contract-RPC
// collaborator: transaction submission, finality polling, and preflight
// simulation.
package soroban

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/stellar/go/xdr"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	RPCURL string `valid:"url,required"`

	// WaitTimeout caps how long WaitTransaction polls before reporting
	// the transaction expired. Defaults to the transaction validity
	// window.
	WaitTimeout time.Duration `valid:"optional"`
}

const (
	pollInterval       = 500 * time.Millisecond
	defaultWaitTimeout = 180 * time.Second
)

func New(cfg Config, logger *slog.Logger) core.SorobanService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}

	return &client{
		http:        resty.New().SetBaseURL(cfg.RPCURL),
		waitTimeout: cfg.WaitTimeout,
		logger:      logger.With("service", "soroban"),
	}
}

type client struct {
	http        *resty.Client
	waitTimeout time.Duration
	logger      *slog.Logger
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *client) call(ctx context.Context, method string, params, result any) error {
	body := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}

	var envelope struct {
		Error  *rpcError `json:"error,omitempty"`
		Result any       `json:"result,omitempty"`
	}
	envelope.Result = result

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		Post("")
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}

	if resp.IsError() {
		return fmt.Errorf("rpc %s: unexpected status %s", method, resp.Status())
	}

	if envelope.Error != nil {
		return fmt.Errorf("rpc %s: %s (%d)", method, envelope.Error.Message, envelope.Error.Code)
	}

	return nil
}

type sendTransactionResponse struct {
	Hash           string `json:"hash"`
	Status         string `json:"status"`
	ErrorResultXDR string `json:"errorResultXdr"`
	LatestLedger   int64  `json:"latestLedger"`
}

func (c *client) SendTransaction(ctx context.Context, envelopeXDR string) (*core.TxResult, error) {
	var resp sendTransactionResponse
	if err := c.call(ctx, "sendTransaction", map[string]string{"transaction": envelopeXDR}, &resp); err != nil {
		return nil, err
	}

	if resp.Status == "ERROR" {
		code := decodeResultCode(resp.ErrorResultXDR)
		chainErr := core.NewChainError(code, messageForCode(code))
		return &core.TxResult{Hash: resp.Hash, Ok: false, Code: chainErr.Code, Message: chainErr.Message}, chainErr
	}

	return &core.TxResult{Hash: resp.Hash, Ok: true}, nil
}

type getTransactionResponse struct {
	Status         string `json:"status"`
	Ledger         int32  `json:"ledger"`
	ResultXDR      string `json:"resultXdr"`
	EnvelopeXDR    string `json:"envelopeXdr"`
	CreatedAt      string `json:"createdAt"`
	ApplicationLog string `json:"diagnosticEventsXdr"`
}

func (c *client) GetTransaction(ctx context.Context, hash string) (*core.TxResult, error) {
	var resp getTransactionResponse
	if err := c.call(ctx, "getTransaction", map[string]string{"hash": hash}, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "SUCCESS":
		return &core.TxResult{Hash: hash, Ok: true, Ledger: resp.Ledger}, nil
	case "NOT_FOUND":
		return nil, core.ErrNotFound
	default:
		code := decodeResultCode(resp.ResultXDR)
		return &core.TxResult{Hash: hash, Ok: false, Ledger: resp.Ledger, Code: code, Message: messageForCode(code)}, nil
	}
}

func (c *client) WaitTransaction(ctx context.Context, hash string) (*core.TxResult, error) {
	deadline := time.Now().Add(c.waitTimeout)

	for {
		result, err := c.GetTransaction(ctx, hash)
		if err == nil {
			return result, nil
		}

		if err != core.ErrNotFound {
			return nil, err
		}

		// Still unseen past the validity window means the network dropped
		// it; the envelope has to be rebuilt, not waited on.
		if time.Now().After(deadline) {
			code := "tx_too_late"
			return &core.TxResult{Hash: hash, Ok: false, Code: code, Message: messageForCode(code)}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

type simulateTransactionResponse struct {
	Error           string `json:"error"`
	TransactionData string `json:"transactionData"`
	MinResourceFee  int64  `json:"minResourceFee,string"`
	LatestLedger    int64  `json:"latestLedger"`
	Results         []struct {
		XDR  string   `json:"xdr"`
		Auth []string `json:"auth"`
	} `json:"results"`
}

func (c *client) SimulateTransaction(ctx context.Context, envelopeXDR string) (*core.Simulation, error) {
	var resp simulateTransactionResponse
	if err := c.call(ctx, "simulateTransaction", map[string]string{"transaction": envelopeXDR}, &resp); err != nil {
		return nil, err
	}

	sim := &core.Simulation{
		Error:           resp.Error,
		TransactionData: resp.TransactionData,
		MinResourceFee:  resp.MinResourceFee,
		LatestLedger:    resp.LatestLedger,
	}

	if len(resp.Results) > 0 {
		sim.ResultXDR = resp.Results[0].XDR
		sim.Auth = resp.Results[0].Auth
	}

	return sim, nil
}

// decodeResultCode extracts a short result code from a base64
// TransactionResult, "tx_failed" when undecodable.
func decodeResultCode(resultXDR string) string {
	if resultXDR == "" {
		return "tx_failed"
	}

	var result xdr.TransactionResult
	if err := xdr.SafeUnmarshalBase64(resultXDR, &result); err != nil {
		return "tx_failed"
	}

	switch result.Result.Code {
	case xdr.TransactionResultCodeTxBadSeq:
		return "tx_bad_seq"
	case xdr.TransactionResultCodeTxBadAuth:
		return "tx_bad_auth"
	case xdr.TransactionResultCodeTxTooEarly:
		return "tx_too_early"
	case xdr.TransactionResultCodeTxTooLate:
		return "tx_too_late"
	case xdr.TransactionResultCodeTxInsufficientBalance:
		return "tx_insufficient_balance"
	case xdr.TransactionResultCodeTxInsufficientFee:
		return "tx_insufficient_fee"
	case xdr.TransactionResultCodeTxNoAccount:
		return "tx_no_source_account"
	case xdr.TransactionResultCodeTxSorobanInvalid:
		return "tx_soroban_invalid"
	default:
		return "tx_failed"
	}
}

func messageForCode(code string) string {
	switch code {
	case "tx_bad_seq":
		return "The sequence number does not match source account"
	case "tx_bad_auth":
		return "Invalid transaction signature"
	case "tx_too_early":
		return "The ledger closeTime was before the minTime"
	case "tx_too_late":
		return "Transaction expired. Please try again"
	case "tx_insufficient_balance":
		return "You don't have enough balance to perform this operation"
	case "tx_insufficient_fee":
		return "The fee is insufficient for the transaction"
	case "tx_no_source_account":
		return "Source account does not exist"
	case "tx_soroban_invalid":
		return "The contract invocation is invalid"
	default:
		return "Failed to send transaction to blockchain"
	}
}
