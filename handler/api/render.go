package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/strooper/strooper-wallet/core"
	"github.com/twitchtv/twirp"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError folds the domain error taxonomy into twirp error envelopes.
// Chain failures keep their result code in the meta so the client can show
// the message and branch on the code.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var chainErr *core.ChainError
	var twerr twirp.Error

	switch {
	case errors.As(err, &twerr):
	case errors.As(err, &chainErr):
		twerr = twirp.Aborted.Error(chainErr.Message).WithMeta("code", chainErr.Code)
	case errors.Is(err, core.ErrNotFound):
		twerr = twirp.NotFoundError("not found")
	case errors.Is(err, core.ErrSessionExpired):
		twerr = twirp.NewError(twirp.DeadlineExceeded, "session expired").WithMeta("code", "session_expired")
	case errors.Is(err, core.ErrSignerExists):
		twerr = twirp.NewError(twirp.AlreadyExists, "signer already registered").WithMeta("code", "signer_exists")
	case errors.Is(err, core.ErrCredentialCreation):
		twerr = twirp.NewError(twirp.PermissionDenied, "credential creation rejected").WithMeta("code", "credential_creation")
	case errors.Is(err, core.ErrAuthorizationDenied):
		twerr = twirp.NewError(twirp.PermissionDenied, "authorization denied").WithMeta("code", "authorization_denied")
	case errors.Is(err, core.ErrKeyMaterialMissing):
		twerr = twirp.NewError(twirp.FailedPrecondition, "key material missing").WithMeta("code", "key_material_missing")
	case errors.Is(err, core.ErrInsufficientBalance):
		twerr = twirp.NewError(twirp.Aborted, "insufficient balance").WithMeta("code", "insufficient_balance")
	case errors.Is(err, context.Canceled):
		twerr = twirp.NewError(twirp.Canceled, "request canceled")
	default:
		twerr = twirp.InternalErrorWith(err)
	}

	twirp.WriteError(w, twerr)
}
