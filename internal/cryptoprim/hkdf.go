package cryptoprim

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ExpandLabel derives a KeyLength-byte sub-key from ikm using HKDF-SHA256
// expand only — there is no extract step, since ikm (the master key) is
// already full-entropy output from Argon2id. label binds the derived key
// to a single purpose; distinct labels never share a prefix so the
// derivations cannot collide.
func ExpandLabel(ikm []byte, label string) ([]byte, error) {
	reader := hkdf.Expand(sha256.New, ikm, []byte(label))
	out := make([]byte, KeyLength)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("cryptoprim: hkdf expand failed: %w", err)
	}
	return out, nil
}
