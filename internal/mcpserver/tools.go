package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/vault"
)

// SecretListInput is the (empty) input for secret_list.
type SecretListInput struct{}

// SecretInfo is metadata for one secret, with no value attached.
type SecretInfo struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SecretListOutput is the output of secret_list.
type SecretListOutput struct {
	Secrets []SecretInfo `json:"secrets"`
}

func (s *Server) handleSecretList(_ context.Context, _ *mcp.CallToolRequest, _ SecretListInput) (*mcp.CallToolResult, SecretListOutput, error) {
	list := s.store.ListSecrets()
	out := SecretListOutput{Secrets: make([]SecretInfo, 0, len(list))}
	for _, meta := range list {
		out.Secrets = append(out.Secrets, SecretInfo{
			Name:      meta.Name,
			CreatedAt: meta.CreatedAt.Format(time.RFC3339),
			UpdatedAt: meta.UpdatedAt.Format(time.RFC3339),
		})
	}
	s.logToolCall(auditlog.OpSecretList, "", true, "listed secrets")
	return nil, out, nil
}

// SecretGetInput is the input for secret_get.
type SecretGetInput struct {
	Name string `json:"name"`
}

// SecretGetOutput is the output of secret_get.
type SecretGetOutput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleSecretGet(_ context.Context, _ *mcp.CallToolRequest, input SecretGetInput) (*mcp.CallToolResult, SecretGetOutput, error) {
	if input.Name == "" {
		return nil, SecretGetOutput{}, errors.New("mcpserver: name is required")
	}

	value, err := s.store.GetSecret(input.Name)
	if err != nil {
		s.logToolCall(auditlog.OpSecretGet, input.Name, false, err.Error())
		if errors.Is(err, vault.ErrSecretNotFound) {
			return nil, SecretGetOutput{}, fmt.Errorf("mcpserver: secret %q not found", input.Name)
		}
		return nil, SecretGetOutput{}, fmt.Errorf("mcpserver: get secret: %w", err)
	}

	s.logToolCall(auditlog.OpSecretGet, input.Name, true, "")
	return nil, SecretGetOutput{Name: input.Name, Value: value}, nil
}

// SecretSetInput is the input for secret_set.
type SecretSetInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SecretSetOutput is the output of secret_set.
type SecretSetOutput struct {
	Name string `json:"name"`
}

func (s *Server) handleSecretSet(_ context.Context, _ *mcp.CallToolRequest, input SecretSetInput) (*mcp.CallToolResult, SecretSetOutput, error) {
	if input.Name == "" {
		return nil, SecretSetOutput{}, errors.New("mcpserver: name is required")
	}

	if err := s.store.SetSecret(input.Name, input.Value); err != nil {
		s.logToolCall(auditlog.OpSecretSet, input.Name, false, err.Error())
		return nil, SecretSetOutput{}, fmt.Errorf("mcpserver: set secret: %w", err)
	}
	if err := s.store.Save(); err != nil {
		s.logToolCall(auditlog.OpSecretSet, input.Name, false, err.Error())
		return nil, SecretSetOutput{}, fmt.Errorf("mcpserver: save: %w", err)
	}

	s.logToolCall(auditlog.OpSecretSet, input.Name, true, "")
	return nil, SecretSetOutput{Name: input.Name}, nil
}

// SecretDeleteInput is the input for secret_delete.
type SecretDeleteInput struct {
	Name string `json:"name"`
}

// SecretDeleteOutput is the output of secret_delete.
type SecretDeleteOutput struct {
	Name string `json:"name"`
}

func (s *Server) handleSecretDelete(_ context.Context, _ *mcp.CallToolRequest, input SecretDeleteInput) (*mcp.CallToolResult, SecretDeleteOutput, error) {
	if input.Name == "" {
		return nil, SecretDeleteOutput{}, errors.New("mcpserver: name is required")
	}

	if err := s.store.DeleteSecret(input.Name); err != nil {
		s.logToolCall(auditlog.OpSecretDelete, input.Name, false, err.Error())
		if errors.Is(err, vault.ErrSecretNotFound) {
			return nil, SecretDeleteOutput{}, fmt.Errorf("mcpserver: secret %q not found", input.Name)
		}
		return nil, SecretDeleteOutput{}, fmt.Errorf("mcpserver: delete secret: %w", err)
	}
	if err := s.store.Save(); err != nil {
		s.logToolCall(auditlog.OpSecretDelete, input.Name, false, err.Error())
		return nil, SecretDeleteOutput{}, fmt.Errorf("mcpserver: save: %w", err)
	}

	s.logToolCall(auditlog.OpSecretDelete, input.Name, true, "")
	return nil, SecretDeleteOutput{Name: input.Name}, nil
}
