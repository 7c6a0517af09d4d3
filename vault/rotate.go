package vault

import (
	"fmt"

	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/keys"
	"github.com/whynaidu/envvault/internal/vaultformat"
)

// RotatePassword re-encrypts an entire vault under a new password (and
// optionally a new keyfile), assembled from the existing open/save
// primitives: it opens the vault with the old password, decrypts every
// secret, derives a new master key under a fresh salt, builds a new
// header preserving CreatedAt, Environment, and the prior KeyfileHash
// (replaced if newKeyfileBytes is supplied), re-inserts every secret
// under a fresh Store built with FromParts, and saves.
//
// On success the returned Store has already been persisted to disk; the
// caller is responsible for eventually calling Wipe on it.
func RotatePassword(path string, oldPassword, oldKeyfileBytes []byte, newPassword []byte, newArgon2Params *cryptoprim.Argon2Params, newKeyfileBytes []byte) (*Store, error) {
	oldStore, err := Open(path, oldPassword, oldKeyfileBytes)
	if err != nil {
		return nil, err
	}
	defer oldStore.Wipe()

	plaintext, err := oldStore.GetAllSecrets()
	if err != nil {
		return nil, err
	}
	defer wipeStringMap(plaintext)

	salt, err := cryptoprim.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	params := cryptoprim.DefaultArgon2Params()
	if newArgon2Params != nil {
		params = *newArgon2Params
	}

	keyfileForKey := newKeyfileBytes
	if keyfileForKey == nil && oldStore.header.KeyfileHash != nil {
		keyfileForKey = oldKeyfileBytes
	}
	effectivePassword, err := effectivePassword(newPassword, keyfileForKey)
	if err != nil {
		return nil, err
	}
	masterBytes, err := cryptoprim.DeriveMasterKey(effectivePassword, salt, params)
	cryptoprim.SecureWipe(effectivePassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	newMasterKey, err := keys.New(masterBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	keyfileHash := oldStore.header.KeyfileHash
	if newKeyfileBytes != nil {
		h := cryptoprim.FingerprintKeyfile(newKeyfileBytes)
		keyfileHash = &h
	}

	newHeader := vaultformat.Header{
		Version:     vaultformat.CurrentVersion,
		Salt:        salt,
		CreatedAt:   oldStore.header.CreatedAt,
		Environment: oldStore.header.Environment,
		Argon2Params: &vaultformat.Argon2Params{
			MemoryKiB:   params.MemoryKiB,
			Iterations:  params.Time,
			Parallelism: uint32(params.Parallelism),
		},
		KeyfileHash: keyfileHash,
	}

	newStore := FromParts(path, newHeader, newMasterKey)
	for name, value := range plaintext {
		if err := newStore.SetSecret(name, value); err != nil {
			newStore.Wipe()
			return nil, err
		}
	}

	if err := newStore.Save(); err != nil {
		newStore.Wipe()
		return nil, err
	}
	return newStore, nil
}

// wipeStringMap drops every entry so the map no longer holds a
// reference to the plaintext values. Go strings are immutable, so
// unlike a []byte this cannot scrub the backing memory in place —
// releasing the reference and letting the GC reclaim it is the best
// this type can do.
func wipeStringMap(m map[string]string) {
	for k := range m {
		delete(m, k)
	}
}
