package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var diffShowValues bool

func init() {
	diffCmd.Flags().BoolVar(&diffShowValues, "show-values", false, "print the differing secret values, not just their names")
}

var diffCmd = &cobra.Command{
	Use:   "diff <target-env>",
	Short: "Compare secrets between the current environment and another",
	Long: `Compares the vault for --env (default: the configured default
environment) against the vault for <target-env>, reporting which
secret names were added, removed, or changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetEnv := args[0]

		sourcePath := vaultPath()
		targetPath := settings.VaultPath(projectDir, targetEnv)

		if _, err := os.Stat(sourcePath); err != nil {
			return fmt.Errorf("environment %q not found", environment)
		}
		if _, err := os.Stat(targetPath); err != nil {
			return fmt.Errorf("environment %q not found", targetEnv)
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
		sourceSecrets, err := source.GetAllSecrets()
		if err != nil {
			return fmt.Errorf("failed to decrypt vault %q: %w", environment, err)
		}

		target, err := vault.Open(targetPath, password, keyfileBytes)
		if errors.Is(err, vault.ErrHMACMismatch) {
			fmt.Printf("Target environment %q uses a different password.\n", targetEnv)
			targetPassword, perr := promptPassword(fmt.Sprintf("Enter password for %q: ", targetEnv))
			if perr != nil {
				return perr
			}
			defer cryptoprim.SecureWipe(targetPassword)
			target, err = vault.Open(targetPath, targetPassword, keyfileBytes)
		}
		if err != nil {
			return fmt.Errorf("failed to open vault %q: %w", targetEnv, err)
		}
		defer target.Wipe()
		targetSecrets, err := target.GetAllSecrets()
		if err != nil {
			return fmt.Errorf("failed to decrypt vault %q: %w", targetEnv, err)
		}

		result := computeDiff(sourceSecrets, targetSecrets)

		log := openAuditLog()
		record(log, auditlog.OpDiff, true, "", fmt.Sprintf("compared %s vs %s", environment, targetEnv))

		printDiff(environment, targetEnv, result, sourceSecrets, targetSecrets, diffShowValues)
		return nil
	},
}

// diffResult categorizes the secret names in two environments by how
// they compare: present only in the target, present only in the
// source, present in both with different values, or present in both
// with the same value.
type diffResult struct {
	added     []string
	removed   []string
	changed   []string
	unchanged []string
}

// computeDiff compares two decrypted secret maps by name.
func computeDiff(source, target map[string]string) diffResult {
	var result diffResult
	for name := range target {
		if _, ok := source[name]; !ok {
			result.added = append(result.added, name)
		}
	}
	for name := range source {
		if _, ok := target[name]; !ok {
			result.removed = append(result.removed, name)
		}
	}
	for name, sourceValue := range source {
		targetValue, ok := target[name]
		if !ok {
			continue
		}
		if sourceValue == targetValue {
			result.unchanged = append(result.unchanged, name)
		} else {
			result.changed = append(result.changed, name)
		}
	}
	sort.Strings(result.added)
	sort.Strings(result.removed)
	sort.Strings(result.changed)
	sort.Strings(result.unchanged)
	return result
}

func printDiff(sourceEnv, targetEnv string, result diffResult, source, target map[string]string, showValues bool) {
	fmt.Printf("\nDiff: %s vs %s\n\n", sourceEnv, targetEnv)

	for _, name := range result.added {
		if showValues {
			fmt.Printf("  + %s = %s\n", name, target[name])
		} else {
			fmt.Printf("  + %s\n", name)
		}
	}
	for _, name := range result.removed {
		if showValues {
			fmt.Printf("  - %s = %s\n", name, source[name])
		} else {
			fmt.Printf("  - %s\n", name)
		}
	}
	for _, name := range result.changed {
		if showValues {
			fmt.Printf("  ~ %s = %s -> %s\n", name, source[name], target[name])
		} else {
			fmt.Printf("  ~ %s (changed)\n", name)
		}
	}

	fmt.Println()
	fmt.Printf("  %d added, %d removed, %d changed, %d unchanged\n",
		len(result.added), len(result.removed), len(result.changed), len(result.unchanged))
}
