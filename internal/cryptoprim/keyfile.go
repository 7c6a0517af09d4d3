package cryptoprim

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

// KeyfileLength is the required length of a keyfile in bytes (256 bits).
const KeyfileLength = 32

// ErrInvalidKeyfileLength indicates a keyfile is not exactly KeyfileLength
// bytes long.
var ErrInvalidKeyfileLength = errors.New("cryptoprim: keyfile must be exactly 32 bytes")

// GenerateKeyfile returns KeyfileLength bytes of CSPRNG randomness,
// suitable for writing to disk as a keyfile.
func GenerateKeyfile() ([]byte, error) {
	buf := make([]byte, KeyfileLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("cryptoprim: failed to generate keyfile: %w", err)
	}
	return buf, nil
}

// CombinePasswordKeyfile folds a keyfile into a password to produce the
// effective password handed to the Argon2id KDF: HMAC-SHA256(keyfile,
// password). The 32-byte MAC carries full entropy from the keyfile even
// if the password itself is weak.
func CombinePasswordKeyfile(password, keyfile []byte) ([]byte, error) {
	if len(keyfile) != KeyfileLength {
		return nil, ErrInvalidKeyfileLength
	}
	mac := hmac.New(sha256.New, keyfile)
	mac.Write(password)
	return mac.Sum(nil), nil
}

// FingerprintKeyfile returns base64(SHA-256(keyfile)), the form stored in
// a vault header's keyfile_hash field.
func FingerprintKeyfile(keyfile []byte) string {
	sum := sha256.Sum256(keyfile)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyKeyfileFingerprint reports whether keyfile matches the fingerprint
// stored in a vault header, using a constant-time comparison.
func VerifyKeyfileFingerprint(keyfile []byte, wantFingerprint string) bool {
	got := FingerprintKeyfile(keyfile)
	return subtle.ConstantTimeCompare([]byte(got), []byte(wantFingerprint)) == 1
}
