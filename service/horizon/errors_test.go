package horizon

import "testing"

func Test_messageForCodes(t *testing.T) {
	tests := []struct {
		name     string
		txCode   string
		opCodes  []string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "bad auth",
			txCode:   "tx_bad_auth",
			wantCode: "tx_bad_auth",
			wantMsg:  "Invalid transaction signature",
		},
		{
			name:     "expired",
			txCode:   "tx_too_late",
			wantCode: "tx_too_late",
			wantMsg:  "Transaction expired. Please try again",
		},
		{
			name:     "stale sequence",
			txCode:   "tx_bad_seq",
			wantCode: "tx_bad_seq",
			wantMsg:  "The sequence number does not match source account",
		},
		{
			name:     "underfunded operation",
			txCode:   "tx_failed",
			opCodes:  []string{"op_underfunded"},
			wantCode: "op_underfunded",
			wantMsg:  "You don't have enough balance to perform this operation",
		},
		{
			name:     "missing trustline",
			txCode:   "tx_failed",
			opCodes:  []string{"op_success", "op_buy_no_trust"},
			wantCode: "op_buy_no_trust",
			wantMsg:  "You need to establish trustline first",
		},
		{
			name:     "failed with no recognized op",
			txCode:   "tx_failed",
			opCodes:  []string{"op_success"},
			wantCode: "tx_failed",
			wantMsg:  "One of the operations failed (none were applied)",
		},
		{
			name:     "unknown code falls back",
			txCode:   "tx_sometimes_wrong",
			wantCode: "tx_sometimes_wrong",
			wantMsg:  genericFailure,
		},
		{
			name:     "empty code falls back",
			txCode:   "",
			wantCode: "tx_failed",
			wantMsg:  genericFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := messageForCodes(tt.txCode, tt.opCodes)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Errorf("messageForCodes(%q, %v) = (%q, %q), want (%q, %q)",
					tt.txCode, tt.opCodes, code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}
