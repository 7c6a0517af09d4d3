// Command envvault is a CLI for managing encrypted, environment-scoped
// secret vaults.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/config"
)

var (
	projectDir  string
	environment string
	keyfilePath string

	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "envvault",
	Short: "envvault manages encrypted, per-environment secret vaults",
	Long:  `A fast, file-backed secrets manager for dev/staging/prod environments.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(projectDir)
		if err != nil {
			return fmt.Errorf("failed to resolve project directory: %w", err)
		}
		projectDir = dir

		loaded, err := config.Load(projectDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		settings = loaded
		if environment == "" {
			environment = settings.DefaultEnvironment
		}

		// The core (vault.Create) requires its parent directory to
		// already exist; creating it for the user's convenience is the
		// CLI's concern, not the core's.
		vaultDir := filepath.Join(projectDir, settings.VaultDir)
		if err := os.MkdirAll(vaultDir, 0o700); err != nil {
			return fmt.Errorf("failed to create vault directory %s: %w", vaultDir, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "project directory (holds .envvault.yaml and the vault directory)")
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "", "environment name (default: from .envvault.yaml, else \"dev\")")
	rootCmd.PersistentFlags().StringVar(&keyfilePath, "keyfile", "", "path to a keyfile for 2FA-protected vaults")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(keyfileCmd)
	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(envCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// vaultPath resolves the on-disk path of the current environment's vault.
func vaultPath() string {
	return settings.VaultPath(projectDir, environment)
}

// readKeyfile loads the keyfile named by --keyfile, if any. It returns
// nil (not an error) when no --keyfile flag was given.
func readKeyfile() ([]byte, error) {
	if keyfilePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(keyfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyfile %s: %w", keyfilePath, err)
	}
	return data, nil
}

// openAuditLog opens the audit log colocated with the vault directory.
// Consistent with the teacher's posture, a failure here only disables
// logging for this invocation — it never blocks the operation itself.
func openAuditLog() *auditlog.Log {
	dir := filepath.Join(projectDir, settings.VaultDir)
	log, err := auditlog.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit logging unavailable: %v\n", err)
		return nil
	}
	return log
}

// record logs an operation outcome if audit logging is available,
// closing the handle afterward.
func record(log *auditlog.Log, operation string, success bool, keyName, detail string) {
	if log == nil {
		return
	}
	if err := log.Log(operation, auditlog.SourceCLI, environment, keyName, success, detail); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write audit record: %v\n", err)
	}
	log.Close()
}
