package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strooper/strooper-wallet/core"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMeta   string
	}{
		{
			name:       "not found",
			err:        core.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "session expired",
			err:        core.ErrSessionExpired,
			wantStatus: http.StatusRequestTimeout,
			wantCode:   "deadline_exceeded",
			wantMeta:   "session_expired",
		},
		{
			name:       "signer exists",
			err:        core.ErrSignerExists,
			wantStatus: http.StatusConflict,
			wantCode:   "already_exists",
			wantMeta:   "signer_exists",
		},
		{
			name:       "authorization denied",
			err:        core.ErrAuthorizationDenied,
			wantStatus: http.StatusForbidden,
			wantCode:   "permission_denied",
			wantMeta:   "authorization_denied",
		},
		{
			name:       "insufficient balance",
			err:        core.ErrInsufficientBalance,
			wantStatus: http.StatusConflict,
			wantCode:   "aborted",
			wantMeta:   "insufficient_balance",
		},
		{
			name:       "chain error keeps result code",
			err:        core.NewChainError("tx_bad_seq", "The sequence number does not match source account"),
			wantStatus: http.StatusConflict,
			wantCode:   "aborted",
			wantMeta:   "tx_bad_seq",
		},
		{
			name:       "wrapped chain error",
			err:        errors.Join(errors.New("submit"), core.NewChainError("op_underfunded", "no balance")),
			wantStatus: http.StatusConflict,
			wantCode:   "aborted",
			wantMeta:   "op_underfunded",
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Code string `json:"code"`
				Meta struct {
					Code string `json:"code"`
				} `json:"meta"`
			}

			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}

			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}

			if tt.wantMeta != "" && body.Meta.Code != tt.wantMeta {
				t.Errorf("meta code = %q, want %q", body.Meta.Code, tt.wantMeta)
			}
		})
	}
}
