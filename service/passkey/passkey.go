// Package passkey runs the WebAuthn ceremonies for wallet provisioning
// and transaction authorization. Cryptographic assertion verification for
// transfers happens on chain; this service verifies ceremony integrity and
// hands the raw artifacts through.
package passkey

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	RPID          string   `valid:"required"`
	RPDisplayName string   `valid:"required"`
	RPOrigins     []string `valid:"required"`
}

func New(cfg Config, states StateStore, logger *slog.Logger) (core.PasskeyService, error) {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	rp, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("init webauthn: %w", err)
	}

	return &service{
		rp:     rp,
		states: states,
		logger: logger.With("service", "passkey"),
	}, nil
}

type service struct {
	rp     *webauthn.WebAuthn
	states StateStore
	logger *slog.Logger
}

// ceremonyUser adapts a wallet user to what the webauthn library wants.
// Credentials stay empty: the registry of record is the signer store and
// the chain, not this service.
type ceremonyUser struct {
	user *core.User
}

func (u ceremonyUser) WebAuthnID() []byte                         { return []byte(u.user.ID) }
func (u ceremonyUser) WebAuthnName() string                       { return u.user.Username }
func (u ceremonyUser) WebAuthnDisplayName() string                { return u.user.DisplayName() }
func (u ceremonyUser) WebAuthnCredentials() []webauthn.Credential { return nil }
func (u ceremonyUser) WebAuthnIcon() string                       { return "" }

func (s *service) BeginRegistration(ctx context.Context, user *core.User) (*protocol.CredentialCreation, error) {
	options, sessionData, err := s.rp.BeginRegistration(
		ceremonyUser{user: user},
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationRequired,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCredentialCreation, err)
	}

	if err := s.states.SaveRegistration(ctx, user.ID, sessionData); err != nil {
		return nil, err
	}

	return options, nil
}

func (s *service) FinishRegistration(ctx context.Context, user *core.User, response *protocol.ParsedCredentialCreationData) (*core.Credential, error) {
	sessionData, err := s.states.TakeRegistration(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	credential, err := s.rp.CreateCredential(ceremonyUser{user: user}, *sessionData, response)
	if err != nil {
		s.logger.Debug("registration ceremony failed", "user", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrCredentialCreation, err)
	}

	return &core.Credential{
		ID:        credential.ID,
		PublicKey: credential.PublicKey,
	}, nil
}

func (s *service) BeginAuthorization(ctx context.Context, user *core.User, credentialID, challenge []byte) (*protocol.CredentialAssertion, error) {
	state := &authorizationState{
		CredentialID: credentialID,
		Challenge:    challenge,
	}

	if err := s.states.SaveAuthorization(ctx, user.ID, state); err != nil {
		return nil, err
	}

	return &protocol.CredentialAssertion{
		Response: protocol.PublicKeyCredentialRequestOptions{
			Challenge:        challenge,
			RelyingPartyID:   s.rp.Config.RPID,
			UserVerification: protocol.VerificationRequired,
			AllowedCredentials: []protocol.CredentialDescriptor{
				{
					Type:         protocol.PublicKeyCredentialType,
					CredentialID: credentialID,
				},
			},
		},
	}, nil
}

func (s *service) FinishAuthorization(ctx context.Context, user *core.User, response *protocol.ParsedCredentialAssertionData) (*core.Assertion, error) {
	state, err := s.states.TakeAuthorization(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := verifyAssertion(state, response, s.rp.Config.RPOrigins); err != nil {
		s.logger.Debug("authorization ceremony failed", "user", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrAuthorizationDenied, err)
	}

	return &core.Assertion{
		CredentialID:      response.RawID,
		AuthenticatorData: response.Raw.AssertionResponse.AuthenticatorData,
		ClientDataJSON:    response.Raw.AssertionResponse.ClientDataJSON,
		Signature:         response.Raw.AssertionResponse.Signature,
	}, nil
}

// verifyAssertion checks ceremony integrity: right ceremony type, the
// challenge we issued, an allowed origin, and the credential the ceremony
// was scoped to. The signature itself is the contract's to verify.
func verifyAssertion(state *authorizationState, response *protocol.ParsedCredentialAssertionData, origins []string) error {
	expected := protocol.URLEncodedBase64(state.Challenge).String()
	if err := response.Response.CollectedClientData.Verify(expected, protocol.AssertCeremony, origins, nil, protocol.TopOriginIgnoreVerificationMode); err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(response.RawID, state.CredentialID) != 1 {
		return fmt.Errorf("assertion from unexpected credential")
	}

	if !response.Response.AuthenticatorData.Flags.UserVerified() {
		return fmt.Errorf("user verification missing")
	}

	return nil
}
