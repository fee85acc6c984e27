package horizon

import (
	"errors"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/strooper/strooper-wallet/core"
)

const genericFailure = "Failed to send transaction to blockchain"

func asChainError(err error, target **core.ChainError) bool {
	return errors.As(err, target)
}

// normalizeError folds a horizon problem response into a ChainError with
// a user-facing message. Anything that isn't a horizon problem passes
// through untouched.
func normalizeError(err error) error {
	var herr *horizonclient.Error
	if !errors.As(err, &herr) {
		return err
	}

	switch herr.Problem.Title {
	case "Resource Missing":
		return core.ErrNotFound
	case "Rate Limit Exceeded":
		return core.NewChainError("rate_limit", "Rate limit exceeded. Please try again in a few seconds")
	case "Internal Server Error":
		return core.NewChainError("internal", "We are facing some issues. Please try again later")
	case "Transaction Failed":
		codes, codesErr := herr.ResultCodes()
		if codesErr != nil {
			return core.NewChainError("tx_failed", genericFailure)
		}

		code, message := messageForCodes(codes.TransactionCode, codes.OperationCodes)
		return core.NewChainError(code, message)
	default:
		return core.NewChainError("tx_failed", genericFailure)
	}
}

var txMessages = map[string]string{
	"tx_bad_auth":             "Invalid transaction signature",
	"tx_bad_auth_extra":       "There are unused signatures attached to the transaction",
	"tx_bad_seq":              "The sequence number does not match source account",
	"tx_too_early":            "The ledger closeTime was before the minTime",
	"tx_too_late":             "Transaction expired. Please try again",
	"tx_missing_operation":    "No operation was specified",
	"tx_no_source_account":    "Source account does not exist",
	"tx_insufficient_balance": "You don't have enough balance to perform this operation",
	"tx_insufficient_fee":     "The fee is insufficient for the transaction",
	"tx_internal_error":       "An unknown error occurred while processing the transaction",
	"tx_not_supported":        "The operation is not supported by the network",
}

var opMessages = map[string]string{
	"op_underfunded":         "You don't have enough balance to perform this operation",
	"op_bad_auth":            "There are missing valid signatures, or the transaction was submitted to the wrong network",
	"op_no_issuer":           "The issuer account does not exist. Has network been restored?",
	"op_buy_no_trust":        "You need to establish trustline first",
	"op_no_trust":            "You need to establish trustline first",
	"op_low_reserve":         "You don't have enough XLM to create the offer",
	"op_no_source_account":   "There is no source account",
	"op_no_destination":      "The destination account does not exist",
	"op_not_supported":       "The operation is not supported by the network",
	"op_too_many_subentries": "Max number of subentries (1000) already reached",
	"op_line_full":           "The destination cannot receive more of this asset",
}

// messageForCodes picks the most specific user-facing message for a
// failed transaction: the transaction-level code first, then the first
// recognized operation code.
func messageForCodes(txCode string, opCodes []string) (string, string) {
	if msg, ok := txMessages[txCode]; ok {
		return txCode, msg
	}

	for _, op := range opCodes {
		if msg, ok := opMessages[op]; ok {
			return op, msg
		}
	}

	if txCode == "tx_failed" {
		return txCode, "One of the operations failed (none were applied)"
	}

	if txCode == "" {
		txCode = "tx_failed"
	}

	return txCode, genericFailure
}
