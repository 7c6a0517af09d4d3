package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var getQuiet bool

func init() {
	getCmd.Flags().BoolVarP(&getQuiet, "quiet", "q", false, "print only the secret value, without the NAME= prefix")
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Decrypt and print a secret's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

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
		value, err := store.GetSecret(name)
		if err != nil {
			record(log, auditlog.OpSecretGet, false, name, err.Error())
			if errors.Is(err, vault.ErrSecretNotFound) {
				return fmt.Errorf("secret %q not found", name)
			}
			return fmt.Errorf("failed to get secret: %w", err)
		}
		record(log, auditlog.OpSecretGet, true, name, "")

		if getQuiet {
			fmt.Println(value)
		} else {
			fmt.Printf("%s=%s\n", name, value)
		}
		return nil
	},
}
