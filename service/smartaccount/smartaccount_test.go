package smartaccount

import (
	"bytes"
	"crypto/elliptic"
	"encoding/asn1"
	"math/big"
	"strings"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

func testFactory(t *testing.T) string {
	t.Helper()

	seed := bytes.Repeat([]byte{7}, 32)
	addr, err := strkey.Encode(strkey.VersionByteContract, seed)
	if err != nil {
		t.Fatal(err)
	}

	return addr
}

func TestDeriveContractID(t *testing.T) {
	factory := testFactory(t)

	var salt [32]byte
	copy(salt[:], []byte("credential-id-hash"))

	first, err := deriveContractID(factory, salt, network.TestNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(first, "C") {
		t.Errorf("contract id %q does not look like a contract address", first)
	}

	again, err := deriveContractID(factory, salt, network.TestNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	if first != again {
		t.Errorf("derivation is not deterministic: %q != %q", first, again)
	}

	var other [32]byte
	copy(other[:], []byte("another-credential"))

	different, err := deriveContractID(factory, other, network.TestNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	if different == first {
		t.Error("different salts derived the same contract id")
	}

	mainnet, err := deriveContractID(factory, salt, network.PublicNetworkPassphrase)
	if err != nil {
		t.Fatal(err)
	}

	if mainnet == first {
		t.Error("different networks derived the same contract id")
	}
}

func TestSignerID(t *testing.T) {
	id := SignerID([]byte{0xfb, 0xff, 0xfe})
	if id != "-__-" {
		t.Errorf("SignerID() = %q, want base64url without padding", id)
	}
}

func TestScAddress(t *testing.T) {
	account := keypair.MustRandom().Address()

	got, err := scAddress(account)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != xdr.ScAddressTypeScAddressTypeAccount {
		t.Errorf("scAddress(%q).Type = %v, want account", account, got.Type)
	}

	contract := testFactory(t)
	got, err = scAddress(contract)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != xdr.ScAddressTypeScAddressTypeContract {
		t.Errorf("scAddress(%q).Type = %v, want contract", contract, got.Type)
	}

	if _, err := scAddress("not-an-address"); err == nil {
		t.Error("scAddress() accepted garbage input")
	}
}

func TestCompactSignature(t *testing.T) {
	order := elliptic.P256().Params().N

	der := func(r, s *big.Int) []byte {
		raw, err := asn1.Marshal(struct{ R, S *big.Int }{r, s})
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	t.Run("low s unchanged", func(t *testing.T) {
		out, err := compactSignature(der(big.NewInt(5), big.NewInt(7)))
		if err != nil {
			t.Fatal(err)
		}

		if len(out) != 64 {
			t.Fatalf("len = %d, want 64", len(out))
		}

		if out[31] != 5 || out[63] != 7 {
			t.Errorf("unexpected r/s encoding: %x", out)
		}
	})

	t.Run("high s normalized", func(t *testing.T) {
		highS := new(big.Int).Sub(order, big.NewInt(3))
		out, err := compactSignature(der(big.NewInt(5), highS))
		if err != nil {
			t.Fatal(err)
		}

		if out[63] != 3 {
			t.Errorf("high S was not folded: %x", out[32:])
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		if _, err := compactSignature(der(big.NewInt(5), order)); err == nil {
			t.Error("accepted s equal to the curve order")
		}

		if _, err := compactSignature([]byte("junk")); err == nil {
			t.Error("accepted malformed DER")
		}
	})
}

func TestI128Val(t *testing.T) {
	v := i128Val(42)
	if v.I128.Hi != 0 || v.I128.Lo != 42 {
		t.Errorf("i128Val(42) = {%d, %d}", v.I128.Hi, v.I128.Lo)
	}
}
