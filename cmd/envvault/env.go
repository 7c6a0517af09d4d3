package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/validate"
	"github.com/whynaidu/envvault/vault"
)

var (
	envCloneNewPassword bool
	envDeleteForce      bool
)

func init() {
	envCloneCmd.Flags().BoolVar(&envCloneNewPassword, "new-password", false, "prompt for a separate password on the new environment instead of reusing the source one")
	envDeleteCmd.Flags().BoolVarP(&envDeleteForce, "force", "f", false, "skip the confirmation prompt and allow deleting the active environment")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envCloneCmd)
	envCmd.AddCommand(envDeleteCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage vault environments",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every environment with a vault file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := filepath.Join(projectDir, settings.VaultDir)

		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			fmt.Println("No vault directory found. Run `envvault init` to create one.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read vault directory: %w", err)
		}

		type envInfo struct {
			name string
			size int64
		}
		var envs []envInfo
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".vault") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			envs = append(envs, envInfo{name: strings.TrimSuffix(entry.Name(), ".vault"), size: info.Size()})
		}
		if len(envs) == 0 {
			fmt.Println("No environments found. Run `envvault init` to create your first vault.")
			return nil
		}
		sort.Slice(envs, func(i, j int) bool { return envs[i].name < envs[j].name })

		fmt.Printf("%d environment(s) found:\n\n", len(envs))
		for _, e := range envs {
			marker := " "
			if e.name == environment {
				marker = "*"
			}
			fmt.Printf("  %s %-20s %s\n", marker, e.name, humanize.Bytes(uint64(e.size)))
		}
		return nil
	},
}

var envCloneCmd = &cobra.Command{
	Use:   "clone <target>",
	Short: "Copy the current environment's secrets into a new environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if err := validate.EnvironmentName(target); err != nil {
			return err
		}

		sourcePath := vaultPath()
		targetPath := settings.VaultPath(projectDir, target)

		if _, err := os.Stat(sourcePath); err != nil {
			return fmt.Errorf("environment %q not found", environment)
		}
		if _, err := os.Stat(targetPath); err == nil {
			return fmt.Errorf("environment %q already exists", target)
		}

		keyfileBytes, err := readKeyfile()
		if err != nil {
			return err
		}
		password, err := promptPassword(fmt.Sprintf("Enter password for %q: ", environment))
		if err != nil {
			return err
		}
		defer cryptoprim.SecureWipe(password)

		source, err := vault.Open(sourcePath, password, keyfileBytes)
		if err != nil {
			return fmt.Errorf("failed to open vault %q: %w", environment, err)
		}
		defer source.Wipe()
		secrets, err := source.GetAllSecrets()
		if err != nil {
			return fmt.Errorf("failed to decrypt vault %q: %w", environment, err)
		}

		targetPassword := password
		if envCloneNewPassword {
			fmt.Println("Choose a password for the new environment.")
			newPassword, err := promptNewPassword()
			if err != nil {
				return err
			}
			defer cryptoprim.SecureWipe(newPassword)
			targetPassword = newPassword
		}

		params := settings.Argon2Params()
		targetStore, err := vault.Create(targetPath, targetPassword, target, &params, keyfileBytes)
		if err != nil {
			return fmt.Errorf("failed to create environment %q: %w", target, err)
		}
		defer targetStore.Wipe()

		for name, value := range secrets {
			if err := targetStore.SetSecret(name, value); err != nil {
				return fmt.Errorf("failed to set secret %q: %w", name, err)
			}
		}
		if err := targetStore.Save(); err != nil {
			return fmt.Errorf("failed to save environment %q: %w", target, err)
		}

		log := openAuditLog()
		record(log, auditlog.OpEnvClone, true, "", fmt.Sprintf("%d secrets, %s -> %s", len(secrets), environment, target))

		fmt.Printf("Cloned %d secret(s) from %q to %q\n", len(secrets), environment, target)
		return nil
	},
}

var envDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an environment's vault file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validate.EnvironmentName(name); err != nil {
			return err
		}

		path := settings.VaultPath(projectDir, name)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("environment %q not found", name)
		}

		if name == environment && !envDeleteForce {
			fmt.Printf("%q is the currently active environment. Use --force to confirm.\n", name)
			return nil
		}

		if !envDeleteForce {
			fmt.Printf("Delete environment %q? This cannot be undone. [y/N] ", name)
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete environment %q: %w", name, err)
		}

		log := openAuditLog()
		record(log, auditlog.OpEnvDelete, true, "", "deleted "+name)

		fmt.Printf("Deleted environment %q (%s removed)\n", name, path)
		return nil
	},
}
