package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault for the current environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := vaultPath()

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer cryptoprim.SecureWipe(password)

		keyfileBytes, err := readKeyfile()
		if err != nil {
			return err
		}

		params := settings.Argon2Params()
		store, err := vault.Create(path, password, environment, &params, keyfileBytes)
		log := openAuditLog()
		if err != nil {
			record(log, auditlog.OpVaultCreate, false, "", err.Error())
			return fmt.Errorf("failed to initialize vault: %w", err)
		}
		defer store.Wipe()
		record(log, auditlog.OpVaultCreate, true, "", path)

		fmt.Printf("Vault initialized at %s for environment %q\n", path, environment)
		return nil
	},
}
