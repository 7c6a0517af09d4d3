package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/vault"
)

var (
	importFormat string
	importInput  string
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "env", "input format: env, json")
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "input file path (required)")
	importCmd.MarkFlagRequired("input")
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Read secrets from a .env or JSON file and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(importInput)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", importInput, err)
		}

		var secrets map[string]string
		switch importFormat {
		case "env":
			secrets, err = parseEnvFile(data)
		case "json":
			err = json.Unmarshal(data, &secrets)
		default:
			return fmt.Errorf("unknown format %q (want env or json)", importFormat)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", importInput, err)
		}
		if len(secrets) == 0 {
			return fmt.Errorf("no secrets found in %s", importInput)
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
		for name, value := range secrets {
			if err := store.SetSecret(name, value); err != nil {
				record(log, auditlog.OpSecretSet, false, name, err.Error())
				return fmt.Errorf("failed to set secret %q: %w", name, err)
			}
		}
		if err := store.Save(); err != nil {
			record(log, auditlog.OpSecretSet, false, "", err.Error())
			return fmt.Errorf("failed to save vault: %w", err)
		}
		record(log, auditlog.OpSecretSet, true, "", fmt.Sprintf("imported %d secrets", len(secrets)))

		fmt.Printf("Imported %d secret(s) into environment %q\n", len(secrets), environment)
		return nil
	},
}

// parseEnvFile parses a simple .env file: NAME=value lines, blank lines
// and '#'-prefixed comments ignored, surrounding single or double quotes
// on the value stripped.
func parseEnvFile(data []byte) (map[string]string, error) {
	result := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("line %d: missing '='", lineNum)
		}
		name := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		result[name] = value
	}
	return result, scanner.Err()
}
