package passkey

import (
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
)

func buildAssertion(challenge, credentialID []byte, origin string, flags protocol.AuthenticatorFlags) *protocol.ParsedCredentialAssertionData {
	response := &protocol.ParsedCredentialAssertionData{}
	response.RawID = credentialID
	response.Response = protocol.ParsedAssertionResponse{
		CollectedClientData: protocol.CollectedClientData{
			Type:      protocol.AssertCeremony,
			Challenge: protocol.URLEncodedBase64(challenge).String(),
			Origin:    origin,
		},
		AuthenticatorData: protocol.AuthenticatorData{
			Flags: flags,
		},
	}

	return response
}

func TestVerifyAssertion(t *testing.T) {
	challenge := []byte("payload-to-sign")
	credentialID := []byte{0x01, 0x02, 0x03}
	origins := []string{"https://wallet.example"}
	state := &authorizationState{
		CredentialID: credentialID,
		Challenge:    challenge,
	}

	verified := protocol.FlagUserPresent | protocol.FlagUserVerified

	t.Run("accepts a matching assertion", func(t *testing.T) {
		response := buildAssertion(challenge, credentialID, origins[0], verified)
		if err := verifyAssertion(state, response, origins); err != nil {
			t.Fatalf("verifyAssertion() error = %v", err)
		}
	})

	t.Run("rejects a stale challenge", func(t *testing.T) {
		response := buildAssertion([]byte("something-else"), credentialID, origins[0], verified)
		if err := verifyAssertion(state, response, origins); err == nil {
			t.Fatal("verifyAssertion() accepted a mismatched challenge")
		}
	})

	t.Run("rejects a foreign origin", func(t *testing.T) {
		response := buildAssertion(challenge, credentialID, "https://evil.example", verified)
		if err := verifyAssertion(state, response, origins); err == nil {
			t.Fatal("verifyAssertion() accepted a foreign origin")
		}
	})

	t.Run("rejects another credential", func(t *testing.T) {
		response := buildAssertion(challenge, []byte{0x09, 0x09}, origins[0], verified)
		if err := verifyAssertion(state, response, origins); err == nil {
			t.Fatal("verifyAssertion() accepted an unexpected credential")
		}
	})

	t.Run("rejects a registration ceremony", func(t *testing.T) {
		response := buildAssertion(challenge, credentialID, origins[0], verified)
		response.Response.CollectedClientData.Type = protocol.CreateCeremony
		if err := verifyAssertion(state, response, origins); err == nil {
			t.Fatal("verifyAssertion() accepted the wrong ceremony type")
		}
	})

	t.Run("rejects presence without verification", func(t *testing.T) {
		response := buildAssertion(challenge, credentialID, origins[0], protocol.FlagUserPresent)
		if err := verifyAssertion(state, response, origins); err == nil {
			t.Fatal("verifyAssertion() accepted a non-verified user")
		}
	})
}
