package cryptoprim

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, KeyLength)
	for i := range key {
		key[i] = byte(i)
	}
	plaintext := []byte("postgres://localhost/db")

	blob, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if len(blob) != NonceLength+len(plaintext)+16 {
		t.Fatalf("unexpected blob length %d", len(blob))
	}

	got, err := Decrypt(key, blob)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestEncryptNonceIsFresh(t *testing.T) {
	key := make([]byte, KeyLength)
	plaintext := []byte("same value every time")

	first, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	second, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	if _, err := Encrypt(make([]byte, 16), []byte("x")); err != ErrInvalidKeyLength {
		t.Fatalf("Encrypt() error = %v, want ErrInvalidKeyLength", err)
	}
}

func TestDecryptFailsGenericallyOnTamper(t *testing.T) {
	key := make([]byte, KeyLength)
	blob, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	blob[len(blob)-1] ^= 0xFF
	if _, err := Decrypt(key, blob); err != ErrDecryptionFailed {
		t.Fatalf("Decrypt() error = %v, want ErrDecryptionFailed", err)
	}

	wrongKey := make([]byte, KeyLength)
	wrongKey[0] = 1
	if _, err := Decrypt(wrongKey, blob); err != ErrDecryptionFailed {
		t.Fatalf("Decrypt() with wrong key error = %v, want ErrDecryptionFailed", err)
	}

	if _, err := Decrypt(key, blob[:4]); err != ErrDecryptionFailed {
		t.Fatalf("Decrypt() on truncated blob error = %v, want ErrDecryptionFailed", err)
	}
}
