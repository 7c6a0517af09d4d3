// Package mcpserver exposes a subset of vault operations as MCP
// (Model Context Protocol) tools over stdio, so an AI agent can manage
// secrets without needing a shell.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/vault"
)

// Server wraps an already-open vault.Store and a go-sdk MCP server
// registered with EnvVault's tool set.
type Server struct {
	server *mcp.Server
	store  *vault.Store
	audit  *auditlog.Log // nil if audit logging is unavailable
}

// Options configures a new Server.
type Options struct {
	// Store is the already-open vault the tools operate on. Open it
	// with vault.Open before constructing a Server.
	Store *vault.Store

	// Audit is an optional audit log; when nil, tool invocations are
	// not recorded.
	Audit *auditlog.Log
}

// New builds a Server and registers its tools. It does not start
// serving requests — call Run for that.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("mcpserver: Store is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "envvault", Version: "1.0.0"},
		nil,
	)

	s := &Server{
		server: mcpServer,
		store:  opts.Store,
		audit:  opts.Audit,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_list",
		Description: "List every secret name in the open vault, with creation and update timestamps. Does not return any secret value.",
	}, s.handleSecretList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_get",
		Description: "Decrypt and return the plaintext value of a single named secret.",
	}, s.handleSecretGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_set",
		Description: "Add a new secret or update an existing one's value.",
	}, s.handleSecretSet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_delete",
		Description: "Remove a secret from the vault.",
	}, s.handleSecretDelete)
}

// Run starts serving MCP tool calls over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) logToolCall(operation, keyName string, success bool, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Log(operation, auditlog.SourceMCP, s.store.Environment(), keyName, success, detail)
}
