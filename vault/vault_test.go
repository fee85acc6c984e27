package vault

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/strooper/strooper-wallet/core"
)

func TestSealOpen(t *testing.T) {
	ctx := context.Background()
	v := New(NewMemoryStorage())
	key := core.VaultKey{UserID: "42", PublicKey: "GABC"}

	testCases := []struct {
		name   string
		secret string
	}{
		{"short", "SB3KTW..."},
		{"long", "SDXWZQ3BCTLMEJQASZT5VFXDJ7ZJQ3VXQXANROCFTHZV7FRPNCEXAMPLE"},
		{"special characters", "!@#$%^&*()_+{}[]|\\:;\"'<>,.?/~`"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Seal(ctx, key, []byte("cred-id"), []byte(tc.secret)); err != nil {
				t.Fatalf("Seal failed: %v", err)
			}

			var got string
			err := v.Open(ctx, key, func(secret []byte) error {
				got = string(secret)
				return nil
			})
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if got != tc.secret {
				t.Errorf("opened secret does not match. Got %q, want %q", got, tc.secret)
			}
		})
	}
}

func TestOpenMissingRecord(t *testing.T) {
	ctx := context.Background()
	v := New(NewMemoryStorage())
	key := core.VaultKey{UserID: "42", PublicKey: "GABC"}

	err := v.Open(ctx, key, func([]byte) error { return nil })
	if !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("Open on empty vault = %v, want ErrKeyMaterialMissing", err)
	}

	if _, err := v.CredentialID(ctx, key); !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("CredentialID on empty vault = %v, want ErrKeyMaterialMissing", err)
	}
}

func TestOpenIncompleteRecord(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	v := New(storage)
	key := core.VaultKey{UserID: "42", PublicKey: "GABC"}

	// a record missing its nonce must fail fast, not decrypt garbage
	raw, _ := json.Marshal(record{
		CredentialID:    []byte("cred-id"),
		WrappingKey:     make([]byte, 32),
		EncryptedSecret: []byte("ciphertext"),
	})
	if err := storage.Put(ctx, "42|GABC", raw); err != nil {
		t.Fatal(err)
	}

	err := v.Open(ctx, key, func([]byte) error { return nil })
	if !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("Open with partial record = %v, want ErrKeyMaterialMissing", err)
	}
}

func TestOpenWrongOwner(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	v := New(storage)

	if err := v.Seal(ctx, core.VaultKey{UserID: "42", PublicKey: "GABC"}, []byte("cred-id"), []byte("secret")); err != nil {
		t.Fatal(err)
	}

	// copy the sealed record under another user's composite key; the
	// derived key no longer matches and decryption must fail
	raw, err := storage.Get(ctx, "42|GABC")
	if err != nil {
		t.Fatal(err)
	}

	if err := storage.Put(ctx, "7|GABC", raw); err != nil {
		t.Fatal(err)
	}

	err = v.Open(ctx, core.VaultKey{UserID: "7", PublicKey: "GABC"}, func([]byte) error { return nil })
	if err == nil {
		t.Error("Open with copied record under another owner should fail")
	}
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	v := New(NewMemoryStorage())
	key := core.VaultKey{UserID: "42", PublicKey: "GABC"}

	if err := v.Seal(ctx, key, []byte("cred-id"), []byte("secret")); err != nil {
		t.Fatal(err)
	}

	if err := v.Drop(ctx, key); err != nil {
		t.Fatal(err)
	}

	err := v.Open(ctx, key, func([]byte) error { return nil })
	if !errors.Is(err, core.ErrKeyMaterialMissing) {
		t.Errorf("Open after Drop = %v, want ErrKeyMaterialMissing", err)
	}
}
