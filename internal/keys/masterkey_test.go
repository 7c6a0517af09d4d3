package keys

import (
	"bytes"
	"testing"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

func TestNewRejectsWrongLength(t *testing.T) {
	if _, err := New(make([]byte, 16)); err != ErrInvalidMasterKeyLength {
		t.Fatalf("New() error = %v, want ErrInvalidMasterKeyLength", err)
	}
}

func TestDeriveSecretKeySeparatesNames(t *testing.T) {
	mk, err := New(bytes.Repeat([]byte{0x07}, cryptoprim.KeyLength))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a, err := mk.DeriveSecretKey("DB_URL")
	if err != nil {
		t.Fatalf("DeriveSecretKey() error = %v", err)
	}
	b, err := mk.DeriveSecretKey("API_KEY")
	if err != nil {
		t.Fatalf("DeriveSecretKey() error = %v", err)
	}
	hmacKey, err := mk.DeriveHMACKey()
	if err != nil {
		t.Fatalf("DeriveHMACKey() error = %v", err)
	}

	if bytes.Equal(a, b) {
		t.Fatal("distinct secret names produced the same derived key")
	}
	if bytes.Equal(a, hmacKey) || bytes.Equal(b, hmacKey) {
		t.Fatal("a secret key collided with the HMAC key")
	}
}

func TestWipeZeroesBytes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, cryptoprim.KeyLength)
	mk, err := New(raw)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mk.Wipe()
	if !mk.isZeroed() {
		t.Fatal("master key bytes were not zeroed after Wipe()")
	}
}
