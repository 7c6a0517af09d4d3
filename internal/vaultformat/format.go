// Package vaultformat implements EnvVault's on-disk binary envelope:
//
//	[EVLT: 4 bytes][version: 1 byte][header_len: 4 bytes LE][header JSON][secrets JSON][HMAC-SHA256: 32 bytes]
//
// Reading preserves the exact header and secrets bytes as stored on disk
// so the HMAC tag can be verified over them directly, without relying on
// JSON re-serialization to round-trip byte-for-byte.
package vaultformat

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

// magic identifies a file as an EnvVault vault.
var magic = [4]byte{'E', 'V', 'L', 'T'}

// CurrentVersion is the binary format version this package writes.
const CurrentVersion = 1

// prefixLen is 4 (magic) + 1 (version) + 4 (header length).
const prefixLen = 9

var (
	ErrVaultNotFound    = errors.New("vaultformat: vault file not found")
	ErrInvalidFormat    = errors.New("vaultformat: invalid vault file format")
	ErrUnsupportedVersion = errors.New("vaultformat: unsupported vault format version")
	ErrHMACMismatch     = errors.New("vaultformat: HMAC verification failed")
)

// Argon2Params is the Argon2id configuration recorded in a vault header so
// that re-opening the vault derives the master key with the exact same
// settings it was created with.
type Argon2Params struct {
	MemoryKiB   uint32 `json:"memory_kib"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint32 `json:"parallelism"`
}

// Header is the metadata stored at the start of a vault file.
type Header struct {
	Version     uint8         `json:"version"`
	Salt        []byte        `json:"salt"`
	CreatedAt   time.Time     `json:"created_at"`
	Environment string        `json:"environment"`
	Argon2Params *Argon2Params `json:"argon2_params,omitempty"`
	KeyfileHash *string       `json:"keyfile_hash,omitempty"`
}

// Secret is a single encrypted secret as stored inside a vault.
type Secret struct {
	Name           string    `json:"name"`
	EncryptedValue []byte    `json:"encrypted_value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RawVault holds a vault's decoded header and secrets alongside the exact
// raw bytes they were parsed from, so callers can verify the stored HMAC
// tag over the bytes that were actually written to disk.
type RawVault struct {
	Header        Header
	Secrets       []Secret
	HeaderBytes   []byte
	SecretsBytes  []byte
	StoredHMAC    []byte
}

// Write serializes header and secrets, tags them with HMAC-SHA256 under
// hmacKey, and writes the result to path atomically: the blob is written
// to a sibling temp file first, then renamed over path so readers never
// observe a partially written vault.
func Write(path string, header Header, secrets []Secret, hmacKey []byte) error {
	if secrets == nil {
		secrets = []Secret{}
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("vaultformat: marshal header: %w", err)
	}
	secretsBytes, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("vaultformat: marshal secrets: %w", err)
	}

	tag := cryptoprim.ComputeHMAC(hmacKey, headerBytes, secretsBytes)

	if len(headerBytes) > 0xFFFFFFFF {
		return fmt.Errorf("vaultformat: header length %d exceeds u32 range", len(headerBytes))
	}

	buf := make([]byte, 0, prefixLen+len(headerBytes)+len(secretsBytes)+cryptoprim.HMACLength)
	buf = append(buf, magic[:]...)
	buf = append(buf, CurrentVersion)
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(headerBytes)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, headerBytes...)
	buf = append(buf, secretsBytes...)
	buf = append(buf, tag...)

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp", filepath.Base(path)))

	if err := os.WriteFile(tmpPath, buf, 0o600); err != nil {
		return fmt.Errorf("vaultformat: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("vaultformat: rename temp file into place: %w", err)
	}
	return nil
}

// Read loads a vault file from disk and returns its header, secrets, and
// the raw bytes they were decoded from. Read does not verify the HMAC
// tag; callers must do so with VerifyHMAC once they have derived the
// HMAC key, since deriving that key may itself require the header's salt
// and Argon2 parameters.
func Read(path string) (*RawVault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrVaultNotFound
		}
		return nil, fmt.Errorf("vaultformat: read vault file: %w", err)
	}

	minSize := prefixLen + cryptoprim.HMACLength
	if len(data) < minSize {
		return nil, fmt.Errorf("%w: file too small to be a valid vault", ErrInvalidFormat)
	}

	if [4]byte(data[0:4]) != magic {
		return nil, fmt.Errorf("%w: missing EVLT magic bytes", ErrInvalidFormat)
	}

	version := data[4]
	if version != CurrentVersion {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrUnsupportedVersion, version, CurrentVersion)
	}

	headerLen := binary.LittleEndian.Uint32(data[5:9])
	headerEnd := prefixLen + int(headerLen)
	if headerEnd+cryptoprim.HMACLength > len(data) {
		return nil, fmt.Errorf("%w: header length exceeds file size", ErrInvalidFormat)
	}

	headerBytes := data[prefixLen:headerEnd]
	secretsEnd := len(data) - cryptoprim.HMACLength
	secretsBytes := data[headerEnd:secretsEnd]
	storedHMAC := data[secretsEnd:]

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: header JSON: %v", ErrInvalidFormat, err)
	}
	var secrets []Secret
	if err := json.Unmarshal(secretsBytes, &secrets); err != nil {
		return nil, fmt.Errorf("%w: secrets JSON: %v", ErrInvalidFormat, err)
	}

	return &RawVault{
		Header:       header,
		Secrets:      secrets,
		HeaderBytes:  append([]byte(nil), headerBytes...),
		SecretsBytes: append([]byte(nil), secretsBytes...),
		StoredHMAC:   append([]byte(nil), storedHMAC...),
	}, nil
}

// VerifyHMAC checks raw.StoredHMAC against HMAC-SHA256(hmacKey,
// raw.HeaderBytes || raw.SecretsBytes) in constant time.
func VerifyHMAC(raw *RawVault, hmacKey []byte) error {
	if !cryptoprim.VerifyHMAC(hmacKey, raw.StoredHMAC, raw.HeaderBytes, raw.SecretsBytes) {
		return ErrHMACMismatch
	}
	return nil
}
