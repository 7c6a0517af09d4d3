package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every secret name in the current environment's vault",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		secrets := store.ListSecrets()
		record(log, auditlog.OpSecretList, true, "", "")

		p := message.NewPrinter(language.English)
		p.Printf("%d secret(s) in environment %q (created %s)\n",
			len(secrets), environment, humanize.Time(store.CreatedAt()))

		for _, meta := range secrets {
			fmt.Printf("  %-40s updated %s\n", meta.Name, humanize.Time(meta.UpdatedAt))
		}
		return nil
	},
}
