// Package cryptoprim provides the primitive cryptographic building blocks
// for EnvVault: AES-256-GCM authenticated encryption, Argon2id password
// key derivation, HKDF-SHA256 sub-key expansion, and keyfile helpers.
//
// Nothing in this package understands vaults, secrets, or the on-disk
// format — it only implements the cryptographic primitives those higher
// layers compose.
package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// Sizes used throughout the vault's crypto layer.
const (
	// KeyLength is the length of every derived key in bytes (256 bits).
	KeyLength = 32

	// NonceLength is the length of an AES-GCM nonce in bytes (96 bits).
	NonceLength = 12
)

// Sentinel errors of the AEAD layer.
var (
	ErrInvalidKeyLength  = errors.New("cryptoprim: key must be exactly 32 bytes")

	// ErrCiphertextTooSmall is not returned by Decrypt, which reports a
	// blob shorter than a nonce as ErrDecryptionFailed.
	ErrCiphertextTooSmall = errors.New("cryptoprim: ciphertext shorter than a nonce")

	// ErrDecryptionFailed deliberately collapses "wrong key", "bad tag",
	// and "truncated blob" into one message so callers never learn which
	// one occurred.
	ErrDecryptionFailed = errors.New("cryptoprim: decryption failed")
)

// Encrypt seals plaintext under key using AES-256-GCM with a fresh random
// 12-byte nonce from the OS CSPRNG. The returned blob is
// nonce || ciphertext || tag.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptoprim: failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return sealed, nil
}

// Decrypt opens a blob produced by Encrypt. It splits the first 12 bytes
// off as the nonce and authenticates the remainder. Any failure —
// wrong key, tampered tag, or a blob shorter than a nonce — surfaces as
// the single ErrDecryptionFailed so callers cannot distinguish the cause.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	if len(blob) < NonceLength {
		return nil, ErrDecryptionFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, ciphertext := blob[:NonceLength], blob[NonceLength:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoprim: failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptoprim: failed to create GCM: %w", err)
	}
	return gcm, nil
}
