package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

func TestCreateSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")

	store, err := Create(path, []byte("correct horse"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.SetSecret("DB_URL", "postgres://localhost/db"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Wipe()

	reopened, err := Open(path, []byte("correct horse"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Wipe()

	got, err := reopened.GetSecret("DB_URL")
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if got != "postgres://localhost/db" {
		t.Fatalf("GetSecret() = %q, want %q", got, "postgres://localhost/db")
	}
}

func TestOpenWithWrongPasswordFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")

	store, err := Create(path, []byte("correct horse"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.SetSecret("DB_URL", "postgres://localhost/db"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Wipe()

	_, err = Open(path, []byte("wrong horse"), nil)
	if err == nil {
		t.Fatal("Open() with the wrong password succeeded, want an error")
	}
	if !errors.Is(err, ErrHMACMismatch) {
		t.Fatalf("Open() error = %v, want an integrity-family error that does not distinguish wrong password from tampering", err)
	}
}

func TestTamperDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")

	store, err := Create(path, []byte("correct horse"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.SetSecret("DB_URL", "postgres://localhost/db"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	store.Wipe()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	data[len(data)/2] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Open(path, []byte("correct horse"), nil); err == nil {
		t.Fatal("Open() on a tampered vault succeeded, want an error")
	}
}

func TestListSecretsSortedAndCreatedAtPreservedOnUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")

	store, err := Create(path, []byte("pw"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer store.Wipe()

	for _, name := range []string{"ZEBRA", "ALPHA", "MIDDLE"} {
		if err := store.SetSecret(name, "v1"); err != nil {
			t.Fatalf("SetSecret(%q) error = %v", name, err)
		}
	}

	list := store.ListSecrets()
	if len(list) != 3 {
		t.Fatalf("len(ListSecrets()) = %d, want 3", len(list))
	}
	wantOrder := []string{"ALPHA", "MIDDLE", "ZEBRA"}
	for i, name := range wantOrder {
		if list[i].Name != name {
			t.Fatalf("ListSecrets()[%d].Name = %q, want %q", i, list[i].Name, name)
		}
	}

	originalCreatedAt := list[0].CreatedAt
	if err := store.SetSecret("ALPHA", "v2"); err != nil {
		t.Fatalf("SetSecret(ALPHA) update error = %v", err)
	}
	updated := store.ListSecrets()[0]
	if !updated.CreatedAt.Equal(originalCreatedAt) {
		t.Fatalf("CreatedAt changed on update: got %v, want %v", updated.CreatedAt, originalCreatedAt)
	}
	if updated.UpdatedAt.Before(originalCreatedAt) {
		t.Fatal("UpdatedAt did not advance on update")
	}
}

func TestGetSecretNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")
	store, err := Create(path, []byte("pw"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer store.Wipe()

	if _, err := store.GetSecret("MISSING"); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("GetSecret() error = %v, want ErrSecretNotFound", err)
	}
}

func TestCreateFailsIfVaultAlreadyExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")
	store, err := Create(path, []byte("pw"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.Wipe()

	if _, err := Create(path, []byte("pw"), "dev", nil, nil); !errors.Is(err, ErrVaultAlreadyExists) {
		t.Fatalf("second Create() error = %v, want ErrVaultAlreadyExists", err)
	}
}

func TestKeyfileRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev.vault")

	keyfile, err := cryptoprim.GenerateKeyfile()
	if err != nil {
		t.Fatalf("GenerateKeyfile() error = %v", err)
	}

	store, err := Create(path, []byte("pw"), "dev", nil, keyfile)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.Wipe()

	if _, err := Open(path, []byte("pw"), nil); !errors.Is(err, ErrKeyfileError) {
		t.Fatalf("Open() without keyfile error = %v, want ErrKeyfileError", err)
	}

	wrongKeyfile := make([]byte, cryptoprim.KeyfileLength)
	copy(wrongKeyfile, keyfile)
	wrongKeyfile[0] ^= 0xFF
	if _, err := Open(path, []byte("pw"), wrongKeyfile); !errors.Is(err, ErrKeyfileError) {
		t.Fatalf("Open() with wrong keyfile error = %v, want ErrKeyfileError", err)
	}

	opened, err := Open(path, []byte("pw"), keyfile)
	if err != nil {
		t.Fatalf("Open() with the correct keyfile error = %v", err)
	}
	opened.Wipe()
}

func TestRotatePassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")

	store, err := Create(path, []byte("password-a"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	secrets := map[string]string{"DB_URL": "postgres://localhost/db", "API_KEY": "abc123", "TOKEN": "xyz"}
	for name, value := range secrets {
		if err := store.SetSecret(name, value); err != nil {
			t.Fatalf("SetSecret(%q) error = %v", name, err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	originalCreatedAt := store.CreatedAt()
	originalSalt := append([]byte(nil), store.Header().Salt...)
	store.Wipe()

	rotated, err := RotatePassword(path, []byte("password-a"), nil, []byte("password-b"), nil, nil)
	if err != nil {
		t.Fatalf("RotatePassword() error = %v", err)
	}
	defer rotated.Wipe()

	if _, err := Open(path, []byte("password-a"), nil); err == nil {
		t.Fatal("Open() with the old password succeeded after rotation, want an error")
	}

	reopened, err := Open(path, []byte("password-b"), nil)
	if err != nil {
		t.Fatalf("Open() with the new password error = %v", err)
	}
	defer reopened.Wipe()

	if !reopened.CreatedAt().Equal(originalCreatedAt) {
		t.Fatalf("CreatedAt changed after rotation: got %v, want %v", reopened.CreatedAt(), originalCreatedAt)
	}
	if reopened.Environment() != "dev" {
		t.Fatalf("Environment changed after rotation: got %q", reopened.Environment())
	}
	if string(reopened.Header().Salt) == string(originalSalt) {
		t.Fatal("salt did not change after rotation")
	}
	for name, want := range secrets {
		got, err := reopened.GetSecret(name)
		if err != nil {
			t.Fatalf("GetSecret(%q) after rotation error = %v", name, err)
		}
		if got != want {
			t.Fatalf("GetSecret(%q) after rotation = %q, want %q", name, got, want)
		}
	}
}

func TestNonDeterminismOfCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.vault")
	store, err := Create(path, []byte("pw"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer store.Wipe()

	if err := store.SetSecret("NAME", "same-value"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	first := store.secrets["NAME"].EncryptedValue

	if err := store.SetSecret("NAME", "same-value"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	second := store.secrets["NAME"].EncryptedValue

	if string(first) == string(second) {
		t.Fatal("two encryptions of the same plaintext under the same name produced identical ciphertext")
	}
}

func TestCreateRequiresParentDirectoryToExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "dev.vault")

	_, err := Create(path, []byte("pw"), "dev", nil, nil)
	if err == nil {
		t.Fatal("expected Create to fail when the parent directory does not exist")
	}
}
