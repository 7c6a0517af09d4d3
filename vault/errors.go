package vault

import "errors"

// Error kinds returned by Store operations. These are semantic, not tied
// to any particular implementation detail, and are safe to switch on
// with errors.Is.
var (
	ErrEncryptionFailed   = errors.New("vault: encryption failed")
	ErrDecryptionFailed   = errors.New("vault: decryption failed — wrong password or corrupted data")
	ErrKeyDerivationFailed = errors.New("vault: key derivation failed")

	ErrVaultNotFound      = errors.New("vault: vault not found at this path")
	ErrVaultAlreadyExists = errors.New("vault: vault already exists at this path")
	ErrInvalidVaultFormat = errors.New("vault: invalid vault format")
	ErrHMACMismatch       = errors.New("vault: HMAC verification failed — vault file may be tampered")

	ErrKeyfileError        = errors.New("vault: keyfile error")
	ErrSecretNotFound      = errors.New("vault: secret not found")
	ErrSecretAlreadyExists = errors.New("vault: secret already exists")

	ErrSerializationError = errors.New("vault: serialization error")
	ErrConfigError        = errors.New("vault: config error")
)
