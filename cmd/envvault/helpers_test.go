package main

import (
	"path/filepath"
	"testing"

	"github.com/whynaidu/envvault/vault"
)

// vaultTestPath returns a fresh vault file path inside a temp directory.
func vaultTestPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "dev.vault")
}

// createTestVault creates a vault at path with the given secrets already set.
func createTestVault(t *testing.T, path, password string, secrets map[string]string) (*vault.Store, error) {
	t.Helper()
	store, err := vault.Create(path, []byte(password), "dev", nil, nil)
	if err != nil {
		return nil, err
	}
	for name, value := range secrets {
		if err := store.SetSecret(name, value); err != nil {
			return nil, err
		}
	}
	return store, nil
}
