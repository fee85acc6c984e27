package api

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stellar/go/strkey"
	"github.com/strooper/strooper-wallet/core"
	"github.com/twitchtv/twirp"
)

func (s *Server) saveUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TelegramID string `json:"telegram_id"`
		Username   string `json:"username"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
	}

	if err := decodeJSON(r, &body); err != nil || body.TelegramID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid user payload"))
		return
	}

	user, err := s.users.Save(r.Context(), &core.User{
		TelegramID: body.TelegramID,
		Username:   body.Username,
		FirstName:  body.FirstName,
		LastName:   body.LastName,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("user is required"))
		return
	}

	wallets, err := s.wallets.ListUser(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wallets": wallets})
}

// createClassicWallet provisions a classical wallet: a server-generated
// keypair whose seed only ever lives sealed in the vault, scoped to the
// passkey credential the client registered.
func (s *Server) createClassicWallet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID    string `json:"session_id"`
		CredentialID string `json:"credential_id"`
		Label        string `json:"label"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SessionID == "" || body.CredentialID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid wallet payload"))
		return
	}

	_, user, err := s.sessionz.Get(r.Context(), body.SessionID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	credentialID, err := base64.RawURLEncoding.DecodeString(body.CredentialID)
	if err != nil {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid credential id"))
		return
	}

	publicKey, err := s.authorizez.ProvisionLegacy(r.Context(), user.ID, credentialID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if err := s.wallets.Create(r.Context(), &core.Wallet{
		Address: publicKey,
		UserID:  user.ID,
		Label:   body.Label,
	}); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"public_key": publicKey})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var (
		stroops int64
		err     error
	)

	if strkey.IsValidContractAddress(address) {
		stroops, err = s.fundz.Balance(r.Context(), address)
	} else {
		var account *core.Account
		account, err = s.chainz.LoadAccount(r.Context(), address)
		if err == nil {
			stroops = account.NativeBalance
		}
	}

	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	raw := strconv.FormatInt(stroops, 10)
	amount, err := core.FromStroops(raw)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"stroops": raw,
		"amount":  amount,
	})
}

func (s *Server) fundWallet(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	result, err := s.fundz.Fund(r.Context(), address)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) createIntentSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TelegramUserID string `json:"telegram_user_id"`
	}

	if err := decodeJSON(r, &body); err != nil || body.TelegramUserID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid session payload"))
		return
	}

	session, err := s.sessionz.CreateIntent(r.Context(), body.TelegramUserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) createPaymentSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TelegramUserID string `json:"telegram_user_id"`
		PublicKey      string `json:"public_key"`
		Amount         string `json:"amount"`
		Receiver       string `json:"receiver"`
	}

	if err := decodeJSON(r, &body); err != nil || body.TelegramUserID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid session payload"))
		return
	}

	stroops, err := core.ToStroops(body.Amount)
	if err != nil || stroops <= 0 {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid amount"))
		return
	}

	session, err := s.sessionz.CreatePayment(r.Context(), body.TelegramUserID, body.PublicKey, stroops, body.Receiver)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, user, err := s.sessionz.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"user":    user,
	})
}

func (s *Server) attachContract(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContractID string `json:"contract_id"`
	}

	if err := decodeJSON(r, &body); err != nil || body.ContractID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid contract payload"))
		return
	}

	session, err := s.sessionz.AttachContract(r.Context(), chi.URLParam(r, "session_id"), body.ContractID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) registerSigner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SignerID   string `json:"signer_id"`
		ContractID string `json:"contract_id"`
	}

	if err := decodeJSON(r, &body); err != nil || body.SignerID == "" || body.ContractID == "" {
		writeError(r.Context(), w, twirp.InvalidArgument.Error("invalid signer payload"))
		return
	}

	if err := s.accountz.RegisterSigner(r.Context(), body.SignerID, body.ContractID); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
	contractID, err := s.accountz.ConnectWallet(r.Context(), chi.URLParam(r, "signer_id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contract_id": contractID})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.chainz.LoadAccount(r.Context(), chi.URLParam(r, "account_id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *Server) listOperations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	operations, err := s.chainz.Operations(r.Context(), chi.URLParam(r, "account_id"), limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"operations": operations})
}
