package cryptoprim

import (
	"bytes"
	"testing"
)

func TestDeriveMasterKeyDeterministic(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := make([]byte, SaltLength)
	for i := range salt {
		salt[i] = byte(i)
	}
	params := DefaultArgon2Params()

	key1, err := DeriveMasterKey(password, salt, params)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	key2, err := DeriveMasterKey(password, salt, params)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	if !bytes.Equal(key1, key2) {
		t.Fatal("identical (password, salt, params) produced different keys")
	}
	if len(key1) != KeyLength {
		t.Fatalf("key length = %d, want %d", len(key1), KeyLength)
	}
}

func TestDeriveMasterKeySensitiveToSaltAndPassword(t *testing.T) {
	params := DefaultArgon2Params()
	salt := make([]byte, SaltLength)

	base, err := DeriveMasterKey([]byte("password-a"), salt, params)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}

	diffPassword, err := DeriveMasterKey([]byte("password-b"), salt, params)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	if bytes.Equal(base, diffPassword) {
		t.Fatal("different passwords produced the same master key")
	}

	otherSalt := make([]byte, SaltLength)
	otherSalt[0] = 1
	diffSalt, err := DeriveMasterKey([]byte("password-a"), otherSalt, params)
	if err != nil {
		t.Fatalf("DeriveMasterKey() error = %v", err)
	}
	if bytes.Equal(base, diffSalt) {
		t.Fatal("different salts produced the same master key")
	}
}

func TestDeriveMasterKeyEnforcesMinima(t *testing.T) {
	salt := make([]byte, SaltLength)
	weak := Argon2Params{MemoryKiB: 1024, Time: 1, Parallelism: 1}
	if _, err := DeriveMasterKey([]byte("pw"), salt, weak); err == nil {
		t.Fatal("expected weak memory cost to be rejected")
	}

	weak = Argon2Params{MemoryKiB: MinArgon2MemoryKiB, Time: 0, Parallelism: 1}
	if _, err := DeriveMasterKey([]byte("pw"), salt, weak); err == nil {
		t.Fatal("expected zero iterations to be rejected")
	}

	weak = Argon2Params{MemoryKiB: MinArgon2MemoryKiB, Time: 1, Parallelism: 0}
	if _, err := DeriveMasterKey([]byte("pw"), salt, weak); err == nil {
		t.Fatal("expected zero parallelism to be rejected")
	}

	ok := Argon2Params{MemoryKiB: MinArgon2MemoryKiB, Time: MinArgon2Time, Parallelism: MinArgon2Threads}
	if _, err := DeriveMasterKey([]byte("pw"), salt, ok); err != nil {
		t.Fatalf("minimum-but-valid params rejected: %v", err)
	}
}

func TestGenerateSaltIsRandom(t *testing.T) {
	a, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	b, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	if len(a) != SaltLength {
		t.Fatalf("salt length = %d, want %d", len(a), SaltLength)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two generated salts were identical")
	}
}
