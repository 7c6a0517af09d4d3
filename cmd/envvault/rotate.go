package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var rotateNewKeyfilePath string

func init() {
	rotateCmd.Flags().StringVar(&rotateNewKeyfilePath, "new-keyfile", "", "path to a new keyfile to attach (replaces or adds 2FA)")
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Change the vault's master password",
	Long: `Rotate decrypts every secret under the current password, derives a
fresh master key under a new password and salt, and re-encrypts and
re-saves the vault atomically. Existing secrets are preserved; only the
encryption under them changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		oldKeyfileBytes, err := readKeyfile()
		if err != nil {
			return err
		}
		oldPassword, err := promptPassword("Enter current password: ")
		if err != nil {
			return err
		}
		defer cryptoprim.SecureWipe(oldPassword)

		newPassword, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer cryptoprim.SecureWipe(newPassword)

		var newKeyfileBytes []byte
		if rotateNewKeyfilePath != "" {
			data, err := readFile(rotateNewKeyfilePath)
			if err != nil {
				return fmt.Errorf("failed to read new keyfile: %w", err)
			}
			newKeyfileBytes = data
		} else {
			newKeyfileBytes = oldKeyfileBytes
		}

		params := settings.Argon2Params()
		store, err := vault.RotatePassword(vaultPath(), oldPassword, oldKeyfileBytes, newPassword, &params, newKeyfileBytes)
		log := openAuditLog()
		if err != nil {
			record(log, auditlog.OpPasswordRotate, false, "", err.Error())
			return fmt.Errorf("failed to rotate password: %w", err)
		}
		defer store.Wipe()
		record(log, auditlog.OpPasswordRotate, true, "", "")

		fmt.Println("Master password rotated successfully.")
		return nil
	},
}
