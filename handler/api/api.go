// Package api is the JSON surface the mini-app and the browser ceremony
// pages talk to. Errors go out as twirp error envelopes so clients get a
// stable code plus a user-facing message.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strooper/strooper-wallet/core"
)

func New(
	users core.UserStore,
	wallets core.WalletStore,
	sessionz core.SessionService,
	passkeyz core.PasskeyService,
	accountz core.SmartAccountService,
	authorizez core.AuthorizerService,
	fundz core.FundingService,
	chainz core.ChainService,
	logger *slog.Logger,
) *Server {
	return &Server{
		users:      users,
		wallets:    wallets,
		sessionz:   sessionz,
		passkeyz:   passkeyz,
		accountz:   accountz,
		authorizez: authorizez,
		fundz:      fundz,
		chainz:     chainz,
		logger:     logger.With("server", "api"),
	}
}

type Server struct {
	users      core.UserStore
	wallets    core.WalletStore
	sessionz   core.SessionService
	passkeyz   core.PasskeyService
	accountz   core.SmartAccountService
	authorizez core.AuthorizerService
	fundz      core.FundingService
	chainz     core.ChainService
	logger     *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.saveUser)
	})

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", s.listWallets)
		r.Post("/classic", s.createClassicWallet)
		r.Route("/{address}", func(r chi.Router) {
			r.Get("/balance", s.getBalance)
			r.Post("/fund", s.fundWallet)
		})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createIntentSession)
		r.Post("/payment", s.createPaymentSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/contract", s.attachContract)
		})
	})

	r.Route("/signers", func(r chi.Router) {
		r.Post("/", s.registerSigner)
		r.Get("/{signer_id}", s.connectWallet)
	})

	r.Route("/passkey", func(r chi.Router) {
		r.Post("/register/begin", s.beginRegistration)
		r.Post("/register/finish", s.finishRegistration)
		r.Post("/register/submit", s.submitCreation)
		r.Post("/authorize/begin", s.beginAuthorization)
		r.Post("/authorize/finish", s.finishAuthorization)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/submit", s.submitPayment)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Route("/{account_id}", func(r chi.Router) {
			r.Get("/", s.getAccount)
			r.Get("/operations", s.listOperations)
		})
	})

	return r
}
