package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/secretselect"
	"github.com/whynaidu/envvault/vault"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit every secret in $EDITOR and apply the changes on save",
	Long: `Decrypts every secret into a temporary file in NAME=value format,
opens it in $VISUAL, $EDITOR, or vi, and applies added, changed, and
removed lines back to the vault once the editor exits cleanly. The
temporary file is overwritten with zeros and removed when the command
returns, whether or not the editor succeeded.`,
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

		secrets, err := store.GetAllSecrets()
		if err != nil {
			return fmt.Errorf("failed to decrypt secrets: %w", err)
		}

		tmpPath, err := writeEditTempFile(secrets)
		if err != nil {
			return err
		}
		defer secureDeleteTempFile(tmpPath)

		editor := findEditor()
		proc := exec.Command(editor, tmpPath)
		proc.Stdin = os.Stdin
		proc.Stdout = os.Stdout
		proc.Stderr = os.Stderr
		if err := proc.Run(); err != nil {
			return fmt.Errorf("failed to launch %q: %w", editor, err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return fmt.Errorf("failed to read edited file: %w", err)
		}
		newSecrets, err := parseEnvFile(edited)
		if err != nil {
			return fmt.Errorf("failed to parse edited file: %w", err)
		}

		added, removed, changed, err := applyEditedSecrets(store, secrets, newSecrets)
		if err != nil {
			return err
		}

		log := openAuditLog()
		if added == 0 && removed == 0 && changed == 0 {
			record(log, auditlog.OpEdit, true, "", "no changes")
			fmt.Println("No changes detected.")
			return nil
		}

		if err := store.Save(); err != nil {
			record(log, auditlog.OpEdit, false, "", err.Error())
			return fmt.Errorf("failed to save vault: %w", err)
		}
		detail := fmt.Sprintf("%d added, %d removed, %d changed", added, removed, changed)
		record(log, auditlog.OpEdit, true, "", detail)

		fmt.Printf("Edit complete: %s\n", detail)
		return nil
	},
}

// writeEditTempFile writes secrets to a fresh, exclusively-created
// 0600 temp file in sorted NAME=value order, so a concurrent process
// cannot race its creation and so it is unreadable by other users for
// the short window it exists on disk.
func writeEditTempFile(secrets map[string]string) (string, error) {
	f, err := os.CreateTemp("", "envvault-edit-*.env")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()
	if err := f.Chmod(0o600); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to set temp file permissions: %w", err)
	}

	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	names = secretselect.SortNames(names)

	fmt.Fprintln(f, "# envvault — edit secrets below (NAME=value format)")
	fmt.Fprintln(f, "# Lines starting with '#' are ignored")
	fmt.Fprintln(f)
	for _, name := range names {
		fmt.Fprintf(f, "%s=%s\n", name, secrets[name])
	}
	return f.Name(), nil
}

// secureDeleteTempFile overwrites the temp file with zeros before
// removing it. Best-effort: a failure here just leaves a stale temp
// file behind, it never fails the command.
func secureDeleteTempFile(path string) {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		zeros := make([]byte, info.Size())
		_ = os.WriteFile(path, zeros, 0o600)
	}
	_ = os.Remove(path)
}

// findEditor resolves the user's preferred editor from $VISUAL, then
// $EDITOR, falling back to vi.
func findEditor() string {
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// applyEditedSecrets diffs old against new and applies the additions,
// updates, and removals to store. Returns the count of each kind of
// change.
func applyEditedSecrets(store *vault.Store, old, updated map[string]string) (added, removed, changed int, err error) {
	for name, newValue := range updated {
		oldValue, existed := old[name]
		if existed && oldValue == newValue {
			continue
		}
		if err := store.SetSecret(name, newValue); err != nil {
			return 0, 0, 0, fmt.Errorf("failed to set secret %q: %w", name, err)
		}
		if existed {
			changed++
		} else {
			added++
		}
	}
	for name := range old {
		if _, stillPresent := updated[name]; !stillPresent {
			if err := store.DeleteSecret(name); err != nil {
				return 0, 0, 0, fmt.Errorf("failed to delete secret %q: %w", name, err)
			}
			removed++
		}
	}
	return added, removed, changed, nil
}
