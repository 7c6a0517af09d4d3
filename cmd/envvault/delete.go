package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a secret from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if !deleteForce {
			fmt.Printf("Delete secret %q from environment %q? [y/N] ", name, environment)
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		keyfileBytes, err := readKeyfile()
		if err != nil {
			return err
		}
		password, err := promptPassword("Enter vault password: ")
		if err != nil {
			return err
		}
		defer cryptoprim.SecureWipe(password)

		store, err := vault.Open(vaultPath(), password, keyfileBytes)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		defer store.Wipe()

		log := openAuditLog()
		if err := store.DeleteSecret(name); err != nil {
			record(log, auditlog.OpSecretDelete, false, name, err.Error())
			if errors.Is(err, vault.ErrSecretNotFound) {
				return fmt.Errorf("secret %q not found", name)
			}
			return fmt.Errorf("failed to delete secret: %w", err)
		}
		if err := store.Save(); err != nil {
			record(log, auditlog.OpSecretDelete, false, name, err.Error())
			return fmt.Errorf("failed to save vault: %w", err)
		}
		record(log, auditlog.OpSecretDelete, true, name, "")

		fmt.Printf("Secret %q deleted\n", name)
		return nil
	},
}
