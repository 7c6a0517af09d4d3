// Package keys wraps the vault's master key and the sub-keys derived from
// it. A MasterKey owns the 32-byte secret that everything else in a vault
// is built on; callers must call Wipe once it is no longer needed, as
// vault.Store.Wipe does for the master key a Store holds.
package keys

import (
	"errors"
	"fmt"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

// ErrInvalidMasterKeyLength indicates a master key is not exactly
// cryptoprim.KeyLength bytes.
var ErrInvalidMasterKeyLength = errors.New("keys: master key must be exactly 32 bytes")

// MasterKey holds the vault's master key and derives the per-secret and
// HMAC sub-keys from it via HKDF-SHA256. The zero value is not usable;
// construct one with New.
type MasterKey struct {
	bytes []byte
}

// New wraps bytes as a MasterKey. bytes must be exactly
// cryptoprim.KeyLength long; New takes ownership of the slice.
func New(bytes []byte) (*MasterKey, error) {
	if len(bytes) != cryptoprim.KeyLength {
		return nil, ErrInvalidMasterKeyLength
	}
	return &MasterKey{bytes: bytes}, nil
}

// isZeroed reports whether every byte of the master key has been
// wiped. Exposed only for tests; production code never needs to see
// the underlying bytes outside of the two derivation calls below.
func (k *MasterKey) isZeroed() bool {
	for _, b := range k.bytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// DeriveSecretKey derives a per-secret encryption key bound to name, so
// that compromising one secret's key does not expose any other secret.
func (k *MasterKey) DeriveSecretKey(name string) ([]byte, error) {
	key, err := cryptoprim.ExpandLabel(k.bytes, fmt.Sprintf("envvault-secret:%s", name))
	if err != nil {
		return nil, fmt.Errorf("keys: derive secret key for %q: %w", name, err)
	}
	return key, nil
}

// DeriveHMACKey derives the key used to compute and verify a vault
// file's integrity tag.
func (k *MasterKey) DeriveHMACKey() ([]byte, error) {
	key, err := cryptoprim.ExpandLabel(k.bytes, "envvault-hmac-key")
	if err != nil {
		return nil, fmt.Errorf("keys: derive HMAC key: %w", err)
	}
	return key, nil
}

// Wipe zeroes the master key in place. The MasterKey must not be used
// again afterwards.
func (k *MasterKey) Wipe() {
	cryptoprim.SecureWipe(k.bytes)
}
