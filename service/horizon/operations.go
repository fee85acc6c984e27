package horizon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pandodao/generic"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/strooper/strooper-wallet/core"
)

func (s *service) Operations(ctx context.Context, accountID string, limit int) ([]*core.Operation, error) {
	if limit <= 0 {
		limit = 15
	}

	page, err := s.client.Operations(horizonclient.OperationRequest{
		ForAccount: accountID,
		Order:      horizonclient.OrderDesc,
		Limit:      uint(limit),
	})
	if err != nil {
		return nil, normalizeError(err)
	}

	return generic.MapSlice(page.Embedded.Records, viewOperation), nil
}

func shortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}

	return addr[:4] + "..." + addr[len(addr)-4:]
}

func viewOperation(record operations.Operation) *core.Operation {
	base := record.GetBase()
	op := &core.Operation{
		ID:        base.ID,
		Type:      base.Type,
		Label:     base.Type,
		Source:    base.SourceAccount,
		CreatedAt: base.LedgerCloseTime.Format(time.RFC3339),
	}

	switch o := record.(type) {
	case operations.Payment:
		op.Label = "Payment"
		code := o.Asset.Code
		if o.Asset.Type == "native" {
			code = "XLM"
		}

		op.AssetCode = o.Asset.Code
		op.Desc = fmt.Sprintf("payment %s %s to %s", o.Amount, code, shortAddress(o.To))
	case operations.CreateAccount:
		op.Label = "Create account"
		op.Desc = fmt.Sprintf("create account %s", shortAddress(o.Account))
	case operations.InvokeHostFunction:
		if strings.Contains(strings.ToLower(o.Function), "invokecontract") {
			op.Label = "Soroban contract function call"
		} else {
			op.Label = "Invoke host function"
		}

		op.Desc = describeBalanceChanges(o)
	case operations.ChangeTrust:
		op.Label = "Change trust"
		op.AssetCode = o.Asset.Code
		op.Desc = fmt.Sprintf("change trust for %s", o.Asset.Code)
	case operations.AllowTrust:
		op.Label = "Allow trust"
		op.AssetCode = o.Asset.Code
		op.Desc = fmt.Sprintf("allow trust for %s", o.Asset.Code)
	case operations.AccountMerge:
		op.Label = "Account merge"
		op.Desc = fmt.Sprintf("merge account %s", shortAddress(o.Into))
	case operations.ManageData:
		op.Label = "Manage data"
		op.Desc = fmt.Sprintf("manage data for %s", o.Name)
	case operations.BumpSequence:
		op.Label = "Bump sequence"
		op.Desc = fmt.Sprintf("bump sequence to %s", o.BumpTo)
	case operations.CreateClaimableBalance:
		op.Label = "Create claimable balance"
		op.Desc = "create claimable balance"
	case operations.ClaimClaimableBalance:
		op.Label = "Claim claimable balance"
		op.Desc = "claim claimable balance"
	default:
		op.Desc = "unknown operation"
	}

	return op
}

func describeBalanceChanges(o operations.InvokeHostFunction) string {
	if len(o.AssetBalanceChanges) == 0 {
		return "No asset balance changes"
	}

	var parts []string
	for _, change := range o.AssetBalanceChanges {
		code := change.Code
		if change.Type == "native" || code == "" {
			code = "XLM"
		}

		desc := fmt.Sprintf("%s %s %s", change.Type, change.Amount, code)
		if change.To != "" {
			desc += " to " + shortAddress(change.To)
		}

		parts = append(parts, desc)
	}

	return strings.Join(parts, ",")
}
