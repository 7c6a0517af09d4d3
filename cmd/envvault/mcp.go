package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/mcpserver"
	"github.com/whynaidu/envvault/vault"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Serve vault operations over MCP (stdio) for AI agents",
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

		server, err := mcpserver.New(mcpserver.Options{Store: store, Audit: log})
		if err != nil {
			return fmt.Errorf("failed to start MCP server: %w", err)
		}

		return server.Run(context.Background())
	},
}
