package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/cryptoprim"
)

var keyfileCmd = &cobra.Command{
	Use:   "keyfile",
	Short: "Keyfile (2FA) operations",
}

var keyfileOutputPath string

func init() {
	keyfileGenerateCmd.Flags().StringVarP(&keyfileOutputPath, "output", "o", "keyfile.bin", "path to write the generated keyfile")
	keyfileCmd.AddCommand(keyfileGenerateCmd)
}

var keyfileGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new random keyfile",
	Long: `Generates a 32-byte random keyfile. Pass its path to --keyfile on
init/set/get/rotate to require it alongside the master password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(keyfileOutputPath); err == nil {
			return fmt.Errorf("refusing to overwrite existing file %s", keyfileOutputPath)
		}

		keyfile, err := cryptoprim.GenerateKeyfile()
		if err != nil {
			return fmt.Errorf("failed to generate keyfile: %w", err)
		}
		if err := os.WriteFile(keyfileOutputPath, keyfile, 0o600); err != nil {
			return fmt.Errorf("failed to write keyfile: %w", err)
		}

		fmt.Printf("Keyfile written to %s\n", keyfileOutputPath)
		fmt.Printf("Fingerprint: %s\n", cryptoprim.FingerprintKeyfile(keyfile))
		return nil
	},
}

// readFile is a thin wrapper kept alongside the keyfile commands since
// every command that handles keyfile paths uses the same read pattern.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
