package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/strooper/strooper-wallet/core"
	"github.com/twitchtv/twirp"
)

// The provisioning flow is split into three calls so a failed deployment
// can be retried without running another credential ceremony:
// begin -> finish (ceremony, wallet proposal) -> submit (chain, registry).

func (s *Server) beginRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid registration payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	options, err := s.passkeyz.BeginRegistration(r.Context(), user)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, options)
}

func (s *Server) finishRegistration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string          `json:"session_id"`
		Label     string          `json:"label"`
		Response  json.RawMessage `json:"response"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" || len(body.Response) == 0 {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid registration payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body.Response))
	if err != nil {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("malformed credential response"))
		return
	}

	credential, err := s.passkeyz.FinishRegistration(r.Context(), user, parsed)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	proposal, err := s.accountz.CreateWallet(r.Context(), body.Label, credential.ID, credential.PublicKey)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

func (s *Server) submitCreation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string `json:"session_id"`
		Label       string `json:"label"`
		SignerID    string `json:"signer_id"`
		ContractID  string `json:"contract_id"`
		UnsignedXDR string `json:"unsigned_xdr"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" || body.SignerID == "" || body.ContractID == "" || body.UnsignedXDR == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid creation payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.accountz.SubmitCreation(r.Context(), body.UnsignedXDR)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if !result.Ok {
		writeError(r.Context(), w, core.NewChainError(result.Code, result.Message))
		return
	}

	if err := s.accountz.RegisterSigner(r.Context(), body.SignerID, body.ContractID); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if err := s.wallets.Create(r.Context(), &core.Wallet{
		Address: body.ContractID,
		UserID:  user.ID,
		Label:   body.Label,
	}); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if _, err := s.sessionz.AttachContract(r.Context(), body.SessionID, body.ContractID); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) beginAuthorization(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
		SignerID  string `json:"signer_id"`
		From      string `json:"from"`
		To        string `json:"to"`
		Amount    string `json:"amount"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" || body.SignerID == "" || body.To == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid authorization payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	credentialID, err := base64.RawURLEncoding.DecodeString(body.SignerID)
	if err != nil {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid signer id"))
		return
	}

	from := body.From
	if from == "" {
		from, err = s.accountz.ConnectWallet(r.Context(), body.SignerID)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
	}

	stroops, err := core.ToStroops(body.Amount)
	if err != nil || stroops <= 0 {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid amount"))
		return
	}

	unsignedXDR, err := s.authorizez.BuildTransfer(r.Context(), from, body.To, stroops)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	challenge, err := s.accountz.AuthorizationPayload(r.Context(), unsignedXDR)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	options, err := s.passkeyz.BeginAuthorization(r.Context(), user, credentialID, challenge)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"unsigned_xdr": unsignedXDR,
		"options":      options,
	})
}

func (s *Server) finishAuthorization(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string          `json:"session_id"`
		UnsignedXDR string          `json:"unsigned_xdr"`
		Response    json.RawMessage `json:"response"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" || body.UnsignedXDR == "" || len(body.Response) == 0 {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid authorization payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body.Response))
	if err != nil {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("malformed assertion response"))
		return
	}

	assertion, err := s.passkeyz.FinishAuthorization(r.Context(), user, parsed)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	signedXDR, err := s.authorizez.Authorize(r.Context(), body.UnsignedXDR, assertion)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.authorizez.Submit(r.Context(), signedXDR)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// submitPayment drives the legacy path: a payment session carries a
// classical envelope signed with the vault-sealed key.
func (s *Server) submitPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid payment payload"))
		return
	}

	session, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if session.Kind != core.SessionKindPayment || session.UnsignedXDR == "" {
		writeError(r.Context(), w, twirp.FailedPrecondition.Error("session carries no payment"))
		return
	}

	key := core.VaultKey{UserID: user.ID, PublicKey: session.PublicKey}
	signedXDR, err := s.authorizez.AuthorizeLegacy(r.Context(), key, session.UnsignedXDR)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.authorizez.SubmitClassic(r.Context(), signedXDR)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
