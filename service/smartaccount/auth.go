package smartaccount

import (
	"context"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/stellar/go/xdr"
	"github.com/strooper/strooper-wallet/core"
)

func (s *service) AuthorizationPayload(ctx context.Context, unsignedXDR string) ([]byte, error) {
	envelope, err := parseEnvelope(unsignedXDR)
	if err != nil {
		return nil, err
	}

	entry, err := addressAuthEntry(envelope)
	if err != nil {
		return nil, err
	}

	cred := entry.Credentials.Address
	preimage := xdr.HashIdPreimage{
		Type: xdr.EnvelopeTypeEnvelopeTypeSorobanAuthorization,
		SorobanAuthorization: &xdr.HashIdPreimageSorobanAuthorization{
			NetworkId:                 xdr.Hash(sha256.Sum256([]byte(s.cfg.NetworkPassphrase))),
			Nonce:                     cred.Nonce,
			SignatureExpirationLedger: cred.SignatureExpirationLedger,
			Invocation:                entry.RootInvocation,
		},
	}

	raw, err := preimage.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal authorization preimage: %w", err)
	}

	sum := sha256.Sum256(raw)
	return sum[:], nil
}

func (s *service) Sign(ctx context.Context, unsignedXDR string, assertion *core.Assertion) (string, error) {
	envelope, err := parseEnvelope(unsignedXDR)
	if err != nil {
		return "", err
	}

	entry, err := addressAuthEntry(envelope)
	if err != nil {
		return "", err
	}

	signature, err := assertionVal(assertion)
	if err != nil {
		return "", err
	}

	entry.Credentials.Address.Signature = signature
	return s.signEnvelope(envelope)
}

// addressAuthEntry finds the single authorization entry the wallet's
// signer has to approve. Invocations built here carry exactly one.
func addressAuthEntry(envelope *xdr.TransactionEnvelope) (*xdr.SorobanAuthorizationEntry, error) {
	for i := range envelope.V1.Tx.Operations {
		invoke, ok := envelope.V1.Tx.Operations[i].Body.GetInvokeHostFunctionOp()
		if !ok {
			continue
		}

		for j := range invoke.Auth {
			if invoke.Auth[j].Credentials.Type == xdr.SorobanCredentialsTypeSorobanCredentialsAddress {
				return &envelope.V1.Tx.Operations[i].Body.InvokeHostFunctionOp.Auth[j], nil
			}
		}
	}

	return nil, fmt.Errorf("no address authorization entry in envelope")
}

// assertionVal packs a verified assertion into the signature structure the
// wallet contract's __check_auth expects. Map keys must stay sorted.
func assertionVal(assertion *core.Assertion) (xdr.ScVal, error) {
	rawSig, err := compactSignature(assertion.Signature)
	if err != nil {
		return xdr.ScVal{}, err
	}

	sigMap := xdr.ScMap{
		mapEntry("authenticator_data", bytesVal(assertion.AuthenticatorData)),
		mapEntry("client_data_json", bytesVal(assertion.ClientDataJSON)),
		mapEntry("id", bytesVal(assertion.CredentialID)),
		mapEntry("signature", bytesVal(rawSig)),
	}

	sigMapPtr := &sigMap

	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &sigMapPtr}, nil
}

func mapEntry(key string, val xdr.ScVal) xdr.ScMapEntry {
	sym := xdr.ScSymbol(key)
	return xdr.ScMapEntry{
		Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym},
		Val: val,
	}
}

// uncompressedPublicKey converts a COSE-encoded credential public key into
// the 65 byte uncompressed SEC1 form the wallet contract stores.
func uncompressedPublicKey(coseKey []byte) ([]byte, error) {
	parsed, err := webauthncose.ParsePublicKey(coseKey)
	if err != nil {
		return nil, err
	}

	key, ok := parsed.(webauthncose.EC2PublicKeyData)
	if !ok {
		return nil, fmt.Errorf("credential key is not an EC2 key")
	}

	if len(key.XCoord) > 32 || len(key.YCoord) > 32 {
		return nil, fmt.Errorf("credential key coordinates out of range")
	}

	out := make([]byte, 65)
	out[0] = 0x04
	copy(out[33-len(key.XCoord):33], key.XCoord)
	copy(out[65-len(key.YCoord):], key.YCoord)
	return out, nil
}

// compactSignature converts an ASN.1 DER ECDSA signature, as authenticators
// emit it, into the fixed 64 byte r||s form with a normalized low S. The
// contract rejects high-S signatures to rule out malleability.
func compactSignature(der []byte) ([]byte, error) {
	var parsed struct {
		R, S *big.Int
	}

	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, fmt.Errorf("parse assertion signature: %w", err)
	}

	order := elliptic.P256().Params().N
	if parsed.R.Sign() <= 0 || parsed.S.Sign() <= 0 || parsed.R.Cmp(order) >= 0 || parsed.S.Cmp(order) >= 0 {
		return nil, fmt.Errorf("assertion signature out of range")
	}

	halfOrder := new(big.Int).Rsh(order, 1)
	if parsed.S.Cmp(halfOrder) > 0 {
		parsed.S = new(big.Int).Sub(order, parsed.S)
	}

	out := make([]byte, 64)
	parsed.R.FillBytes(out[:32])
	parsed.S.FillBytes(out[32:])
	return out, nil
}
