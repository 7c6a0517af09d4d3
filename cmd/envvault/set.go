package main

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var setStdin bool

func init() {
	setCmd.Flags().BoolVar(&setStdin, "stdin", false, "read the secret value from standard input instead of prompting")
}

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Add or update a secret",
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

		value, err := readSecretValue(name)
		if err != nil {
			return err
		}

		store, err := vault.Open(vaultPath(), password, keyfileBytes)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		defer store.Wipe()

		log := openAuditLog()
		if err := store.SetSecret(name, value); err != nil {
			record(log, auditlog.OpSecretSet, false, name, err.Error())
			return fmt.Errorf("failed to set secret: %w", err)
		}
		if err := store.Save(); err != nil {
			record(log, auditlog.OpSecretSet, false, name, err.Error())
			return fmt.Errorf("failed to save vault: %w", err)
		}
		record(log, auditlog.OpSecretSet, true, name, "")

		fmt.Printf("Secret %q saved\n", name)
		return nil
	},
}

// readSecretValue reads a secret's plaintext value, either from a
// masked terminal prompt or from stdin when --stdin is given or stdin
// is not a terminal.
func readSecretValue(name string) (string, error) {
	if setStdin || !isatty.IsTerminal(os.Stdin.Fd()) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read secret value: %w", err)
		}
		return trimTrailingNewline(data), nil
	}

	fmt.Printf("Enter value for %q: ", name)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret value: %w", err)
	}
	return string(value), nil
}

func trimTrailingNewline(data []byte) string {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}
	if len(data) > 0 && data[len(data)-1] == '\r' {
		data = data[:len(data)-1]
	}
	return string(data)
}
