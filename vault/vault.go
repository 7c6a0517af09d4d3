// Package vault implements EnvVault's core: a file-backed, AEAD-encrypted
// store of named secrets, addressed by environment (e.g. "dev", "prod").
//
// A Store is owned by exactly one caller at a time; the package neither
// requires nor provides thread-safety, and callers sharing a Store or a
// vault file across goroutines or processes must serialize access
// themselves. The only cross-process interaction is the atomic rename
// performed by Save, under which the last writer wins.
package vault

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/keys"
	"github.com/whynaidu/envvault/internal/validate"
	"github.com/whynaidu/envvault/internal/vaultformat"
)

// Store is the main vault handle. Construct one with Create or Open,
// operate on it with the secret and rotation methods, and call Save to
// persist changes. There is no explicit close: release the Store (after
// calling Wipe) to free its key material.
type Store struct {
	path       string
	header     vaultformat.Header
	secrets    map[string]vaultformat.Secret
	masterKey  *keys.MasterKey
}

// Create makes a brand-new vault file at path. It fails if a file
// already exists there. argon2Params may be nil to use
// cryptoprim.DefaultArgon2Params; keyfileBytes may be nil to skip
// keyfile 2FA.
func Create(path string, password []byte, environment string, argon2Params *cryptoprim.Argon2Params, keyfileBytes []byte) (*Store, error) {
	if err := validate.EnvironmentName(environment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigError, err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, ErrVaultAlreadyExists
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("vault: stat %s: %w", path, err)
	}
	if err := checkSufficientDiskSpace(path); err != nil {
		return nil, err
	}

	salt, err := cryptoprim.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	params := cryptoprim.DefaultArgon2Params()
	if argon2Params != nil {
		params = *argon2Params
	}

	effectivePassword, err := effectivePassword(password, keyfileBytes)
	if err != nil {
		return nil, err
	}
	masterBytes, err := cryptoprim.DeriveMasterKey(effectivePassword, salt, params)
	cryptoprim.SecureWipe(effectivePassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	masterKey, err := keys.New(masterBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	var keyfileHash *string
	if keyfileBytes != nil {
		h := cryptoprim.FingerprintKeyfile(keyfileBytes)
		keyfileHash = &h
	}

	header := vaultformat.Header{
		Version:     vaultformat.CurrentVersion,
		Salt:        salt,
		CreatedAt:   time.Now().UTC(),
		Environment: environment,
		Argon2Params: &vaultformat.Argon2Params{
			MemoryKiB:   params.MemoryKiB,
			Iterations:  params.Time,
			Parallelism: uint32(params.Parallelism),
		},
		KeyfileHash: keyfileHash,
	}

	store := &Store{
		path:      path,
		header:    header,
		secrets:   make(map[string]vaultformat.Secret),
		masterKey: masterKey,
	}

	if err := store.Save(); err != nil {
		return nil, err
	}
	return store, nil
}

// Open reads an existing vault file, derives the master key from
// password and the header's stored salt and Argon2 parameters, and
// verifies the HMAC tag over the raw on-disk bytes before trusting any
// decoded secret.
//
// If the header records a keyfile fingerprint, keyfileBytes must be
// supplied and must match it, or Open fails with ErrKeyfileError. If the
// header has no fingerprint, keyfileBytes is ignored: a vault with no
// recorded keyfile does not change its effective password based on a
// caller-supplied keyfile it never agreed to.
func Open(path string, password []byte, keyfileBytes []byte) (*Store, error) {
	raw, err := vaultformat.Read(path)
	if err != nil {
		switch {
		case err == vaultformat.ErrVaultNotFound:
			return nil, ErrVaultNotFound
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidVaultFormat, err)
		}
	}

	var usedKeyfile []byte
	if raw.Header.KeyfileHash != nil {
		if keyfileBytes == nil {
			return nil, fmt.Errorf("%w: this vault requires a keyfile", ErrKeyfileError)
		}
		if !cryptoprim.VerifyKeyfileFingerprint(keyfileBytes, *raw.Header.KeyfileHash) {
			return nil, fmt.Errorf("%w: keyfile does not match this vault", ErrKeyfileError)
		}
		usedKeyfile = keyfileBytes
	}

	effectivePassword, err := effectivePassword(password, usedKeyfile)
	if err != nil {
		return nil, err
	}

	params := cryptoprim.DefaultArgon2Params()
	if raw.Header.Argon2Params != nil {
		params = cryptoprim.Argon2Params{
			MemoryKiB:   raw.Header.Argon2Params.MemoryKiB,
			Time:        raw.Header.Argon2Params.Iterations,
			Parallelism: uint8(raw.Header.Argon2Params.Parallelism),
		}
	}

	masterBytes, err := cryptoprim.DeriveMasterKey(effectivePassword, raw.Header.Salt, params)
	cryptoprim.SecureWipe(effectivePassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	masterKey, err := keys.New(masterBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}

	hmacKey, err := masterKey.DeriveHMACKey()
	if err != nil {
		masterKey.Wipe()
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	verifyErr := vaultformat.VerifyHMAC(raw, hmacKey)
	cryptoprim.SecureWipe(hmacKey)
	if verifyErr != nil {
		masterKey.Wipe()
		return nil, ErrHMACMismatch
	}

	secrets := make(map[string]vaultformat.Secret, len(raw.Secrets))
	for _, s := range raw.Secrets {
		secrets[s.Name] = s
	}

	return &Store{
		path:      path,
		header:    raw.Header,
		secrets:   secrets,
		masterKey: masterKey,
	}, nil
}

// FromParts constructs an empty Store from pre-built parts, without
// touching disk. It is used by the password rotation protocol to build
// a fresh store around a new master key and header before re-inserting
// secrets and saving.
func FromParts(path string, header vaultformat.Header, masterKey *keys.MasterKey) *Store {
	return &Store{
		path:      path,
		header:    header,
		secrets:   make(map[string]vaultformat.Secret),
		masterKey: masterKey,
	}
}

// Save serializes every secret into a deterministic, name-sorted list,
// derives a fresh HMAC key, and writes the vault envelope atomically.
//
// Two concurrent Save calls on the same file race on the final rename;
// this package performs no locking, so the last writer wins and the
// loser's in-memory Store silently goes stale. Callers needing
// cross-process mutual exclusion must provide it themselves.
func (s *Store) Save() error {
	list := make([]vaultformat.Secret, 0, len(s.secrets))
	for _, secret := range s.secrets {
		list = append(list, secret)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	hmacKey, err := s.masterKey.DeriveHMACKey()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	defer cryptoprim.SecureWipe(hmacKey)

	if err := vaultformat.Write(s.path, s.header, list, hmacKey); err != nil {
		return fmt.Errorf("vault: save: %w", err)
	}
	return nil
}

// Wipe zeroes the Store's master key. The Store must not be used again
// afterwards.
func (s *Store) Wipe() {
	s.masterKey.Wipe()
}

// Path returns the path to the vault file on disk.
func (s *Store) Path() string { return s.path }

// Environment returns the vault's environment name (e.g. "dev").
func (s *Store) Environment() string { return s.header.Environment }

// SecretCount returns the number of secrets currently in the vault.
func (s *Store) SecretCount() int { return len(s.secrets) }

// CreatedAt returns the vault's creation timestamp.
func (s *Store) CreatedAt() time.Time { return s.header.CreatedAt }

// Has reports whether the vault contains a secret with the given name.
// It performs no decryption.
func (s *Store) Has(name string) bool {
	_, ok := s.secrets[name]
	return ok
}

// Header returns the vault's header metadata (stored Argon2 params,
// keyfile fingerprint, creation time, environment).
func (s *Store) Header() vaultformat.Header { return s.header }

// effectivePassword combines password with keyfileBytes (if non-nil) via
// HMAC, or returns a copy of password unchanged.
func effectivePassword(password, keyfileBytes []byte) ([]byte, error) {
	if keyfileBytes == nil {
		out := make([]byte, len(password))
		copy(out, password)
		return out, nil
	}
	combined, err := cryptoprim.CombinePasswordKeyfile(password, keyfileBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyfileError, err)
	}
	return combined, nil
}
