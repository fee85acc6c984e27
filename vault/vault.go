// Package vault keeps wrapped signing secrets in per-device secure
// storage. A record holds the WebAuthn credential id, a wrapping key, the
// AES-GCM sealed secret and its nonce; the plaintext secret only ever
// exists inside the scoped Open call.
package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/strooper/strooper-wallet/core"
	"golang.org/x/crypto/hkdf"
)

// Storage is the secure key/value backing the vault writes records to.
// Writes are atomic per key.
type Storage interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type record struct {
	CredentialID    []byte `json:"credential_id"`
	WrappingKey     []byte `json:"wrapping_key"`
	EncryptedSecret []byte `json:"encrypted_secret"`
	Nonce           []byte `json:"nonce"`
}

func (r *record) complete() bool {
	return len(r.CredentialID) > 0 && len(r.WrappingKey) > 0 && len(r.EncryptedSecret) > 0 && len(r.Nonce) > 0
}

func New(storage Storage) core.CredentialVault {
	return &vault{storage: storage}
}

type vault struct {
	storage Storage
}

func storageKey(key core.VaultKey) string {
	return key.UserID + "|" + key.PublicKey
}

// deriveKey binds the AES key to the composite vault key, so a record
// copied under another user's key fails to open.
func deriveKey(wrappingKey []byte, key core.VaultKey) ([]byte, error) {
	h := hkdf.New(sha256.New, wrappingKey, []byte(storageKey(key)), []byte("credential-wrapping-key"))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (v *vault) Seal(ctx context.Context, key core.VaultKey, credentialID, secret []byte) error {
	if len(credentialID) == 0 || len(secret) == 0 {
		return fmt.Errorf("vault: nothing to seal")
	}

	wrappingKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, wrappingKey); err != nil {
		return err
	}

	aesKey, err := deriveKey(wrappingKey, key)
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	rec := record{
		CredentialID:    credentialID,
		WrappingKey:     wrappingKey,
		EncryptedSecret: gcm.Seal(nil, nonce, secret, nil),
		Nonce:           nonce,
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return v.storage.Put(ctx, storageKey(key), raw)
}

func (v *vault) load(ctx context.Context, key core.VaultKey) (*record, error) {
	raw, err := v.storage.Get(ctx, storageKey(key))
	if err != nil {
		return nil, core.ErrKeyMaterialMissing
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, core.ErrKeyMaterialMissing
	}

	if !rec.complete() {
		return nil, core.ErrKeyMaterialMissing
	}

	return &rec, nil
}

func (v *vault) CredentialID(ctx context.Context, key core.VaultKey) ([]byte, error) {
	rec, err := v.load(ctx, key)
	if err != nil {
		return nil, err
	}

	return rec.CredentialID, nil
}

func (v *vault) Open(ctx context.Context, key core.VaultKey, use func(secret []byte) error) error {
	rec, err := v.load(ctx, key)
	if err != nil {
		return err
	}

	aesKey, err := deriveKey(rec.WrappingKey, key)
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	secret, err := gcm.Open(nil, rec.Nonce, rec.EncryptedSecret, nil)
	if err != nil {
		return fmt.Errorf("vault: open sealed secret: %w", err)
	}

	defer func() {
		for i := range secret {
			secret[i] = 0
		}
	}()

	return use(secret)
}

func (v *vault) Drop(ctx context.Context, key core.VaultKey) error {
	return v.storage.Delete(ctx, storageKey(key))
}
