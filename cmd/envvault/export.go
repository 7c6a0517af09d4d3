package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/secretselect"
	"github.com/whynaidu/envvault/vault"
)

var (
	exportFormat string
	exportOutput string
	exportKeys   []string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "env", "output format: env, json, yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path (default: stdout)")
	exportCmd.Flags().StringArrayVarP(&exportKeys, "key", "k", nil, "secret name or glob pattern to export (repeatable; default: all secrets)")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decrypt every secret and write it out as .env, JSON, or YAML",
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
		secrets, err := store.GetAllSecrets()
		if err != nil {
			record(log, auditlog.OpSecretList, false, "", err.Error())
			return fmt.Errorf("failed to decrypt secrets: %w", err)
		}
		record(log, auditlog.OpSecretList, true, "", "exported "+exportFormat)

		if len(exportKeys) > 0 {
			names := make([]string, 0, len(secrets))
			for name := range secrets {
				names = append(names, name)
			}
			selected, err := secretselect.ExpandPatterns(exportKeys, names)
			if err != nil {
				return err
			}
			filtered := make(map[string]string, len(selected))
			for _, name := range selected {
				filtered[name] = secrets[name]
			}
			secrets = filtered
		}

		var encoded []byte
		switch exportFormat {
		case "env":
			encoded = []byte(encodeEnv(secrets))
		case "json":
			encoded, err = json.MarshalIndent(secrets, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			encoded = append(encoded, '\n')
		case "yaml":
			encoded, err = yaml.Marshal(secrets)
			if err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
		default:
			return fmt.Errorf("unknown format %q (want env, json, or yaml)", exportFormat)
		}

		if exportOutput == "" {
			_, err = os.Stdout.Write(encoded)
			return err
		}
		return os.WriteFile(exportOutput, encoded, 0o600)
	},
}

// encodeEnv renders secrets as NAME=value lines, sorted by name, quoting
// values that contain a space, a tab, a '#', or a quote character.
func encodeEnv(secrets map[string]string) string {
	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	names = secretselect.SortNames(names)

	var b strings.Builder
	for _, name := range names {
		value := secrets[name]
		if strings.ContainsAny(value, " \t#\"'") {
			value = `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
		}
		fmt.Fprintf(&b, "%s=%s\n", name, value)
	}
	return b.String()
}
