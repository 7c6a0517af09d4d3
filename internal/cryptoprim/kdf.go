package cryptoprim

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SaltLength is the length of a vault salt in bytes (256 bits).
const SaltLength = 32

// Argon2 parameter minima, enforced at derivation time (not only at
// configuration time) so a hand-edited header can never weaken the KDF.
const (
	MinArgon2MemoryKiB = 8 * 1024 // 8 MiB
	MinArgon2Time      = 1
	MinArgon2Threads   = 1
)

// Default Argon2id parameters used when a vault header specifies none
// (the v0.1.0 legacy case) or when the caller does not supply its own.
const (
	DefaultArgon2MemoryKiB = 64 * 1024 // 64 MiB
	DefaultArgon2Time      = 3
	DefaultArgon2Threads   = 4
)

// ErrWeakArgon2Params indicates the requested parameters fall below the
// enforced minima.
var ErrWeakArgon2Params = errors.New("cryptoprim: argon2 parameters below minimum")

// Argon2Params holds the tunable Argon2id cost parameters.
type Argon2Params struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
}

// DefaultArgon2Params returns the vault's default Argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:   DefaultArgon2MemoryKiB,
		Time:        DefaultArgon2Time,
		Parallelism: DefaultArgon2Threads,
	}
}

// Validate rejects parameters weaker than the enforced minima.
func (p Argon2Params) Validate() error {
	if p.MemoryKiB < MinArgon2MemoryKiB {
		return fmt.Errorf("%w: memory_kib %d below minimum %d", ErrWeakArgon2Params, p.MemoryKiB, MinArgon2MemoryKiB)
	}
	if p.Time < MinArgon2Time {
		return fmt.Errorf("%w: iterations %d below minimum %d", ErrWeakArgon2Params, p.Time, MinArgon2Time)
	}
	if p.Parallelism < MinArgon2Threads {
		return fmt.Errorf("%w: parallelism %d below minimum %d", ErrWeakArgon2Params, p.Parallelism, MinArgon2Threads)
	}
	return nil
}

// DeriveMasterKey derives a 32-byte master key from a password and salt
// using Argon2id. The same (password, salt, params) triple always
// produces the same key. Parameter minima are enforced here so a
// tampered header cannot silently weaken the KDF.
func DeriveMasterKey(password, salt []byte, params Argon2Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	key := argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Parallelism, KeyLength)
	return key, nil
}

// GenerateSalt returns SaltLength bytes of CSPRNG randomness.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("cryptoprim: failed to generate salt: %w", err)
	}
	return salt, nil
}
