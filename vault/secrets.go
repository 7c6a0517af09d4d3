package vault

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/validate"
	"github.com/whynaidu/envvault/internal/vaultformat"
)

// SecretMetadata describes a secret without exposing its value.
type SecretMetadata struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetSecret adds or updates a secret. The plaintext value is encrypted
// under a key derived solely for this secret's name; that key is
// zeroized immediately after encryption. The change is held in memory
// only until Save is called.
func (s *Store) SetSecret(name, plaintextValue string) error {
	if err := validate.SecretName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigError, err)
	}

	secretKey, err := s.masterKey.DeriveSecretKey(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	encryptedValue, encErr := cryptoprim.Encrypt(secretKey, []byte(plaintextValue))
	cryptoprim.SecureWipe(secretKey)
	if encErr != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionFailed, encErr)
	}

	now := time.Now().UTC()
	createdAt := now
	if existing, ok := s.secrets[name]; ok {
		createdAt = existing.CreatedAt
	}

	s.secrets[name] = vaultformat.Secret{
		Name:           name,
		EncryptedValue: encryptedValue,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	return nil
}

// GetSecret decrypts and returns the plaintext value of a secret. The
// per-secret key is zeroized immediately after decryption. A decrypted
// value that is not valid UTF-8 surfaces as ErrSerializationError and
// the offending bytes are zeroized before being discarded.
func (s *Store) GetSecret(name string) (string, error) {
	if err := validate.SecretName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigError, err)
	}
	secret, ok := s.secrets[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSecretNotFound, name)
	}

	secretKey, err := s.masterKey.DeriveSecretKey(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyDerivationFailed, err)
	}
	plaintext, decErr := cryptoprim.Decrypt(secretKey, secret.EncryptedValue)
	cryptoprim.SecureWipe(secretKey)
	if decErr != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, decErr)
	}

	if !utf8.Valid(plaintext) {
		cryptoprim.SecureWipe(plaintext)
		return "", fmt.Errorf("%w: secret value is not valid UTF-8", ErrSerializationError)
	}
	value := string(plaintext)
	cryptoprim.SecureWipe(plaintext)
	return value, nil
}

// DeleteSecret removes a secret from the vault. It fails with
// ErrSecretNotFound if no such secret exists.
func (s *Store) DeleteSecret(name string) error {
	if err := validate.SecretName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigError, err)
	}
	if _, ok := s.secrets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrSecretNotFound, name)
	}
	delete(s.secrets, name)
	return nil
}

// ListSecrets returns metadata for every secret, sorted by name. No
// decryption is performed.
func (s *Store) ListSecrets() []SecretMetadata {
	list := make([]SecretMetadata, 0, len(s.secrets))
	for _, secret := range s.secrets {
		list = append(list, SecretMetadata{
			Name:      secret.Name,
			CreatedAt: secret.CreatedAt,
			UpdatedAt: secret.UpdatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// GetAllSecrets decrypts every secret into a fresh name -> plaintext
// map. Callers are responsible for zeroizing the returned values once
// they are done with them.
func (s *Store) GetAllSecrets() (map[string]string, error) {
	out := make(map[string]string, len(s.secrets))
	for name := range s.secrets {
		value, err := s.GetSecret(name)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}
