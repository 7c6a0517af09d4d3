package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/whynaidu/envvault/vault"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.vault")
	store, err := vault.Create(path, []byte("correcthorsebatterystaple"), "dev", nil, nil)
	if err != nil {
		t.Fatalf("failed to create test vault: %v", err)
	}
	t.Cleanup(store.Wipe)

	s, err := New(Options{Store: store})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return s
}

func TestHandleSecretSetAndGet(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	if _, out, err := s.handleSecretSet(ctx, nil, SecretSetInput{Name: "db-password", Value: "hunter2"}); err != nil {
		t.Fatalf("handleSecretSet: %v", err)
	} else if out.Name != "db-password" {
		t.Errorf("handleSecretSet name = %q, want db-password", out.Name)
	}

	_, getOut, err := s.handleSecretGet(ctx, nil, SecretGetInput{Name: "db-password"})
	if err != nil {
		t.Fatalf("handleSecretGet: %v", err)
	}
	if getOut.Value != "hunter2" {
		t.Errorf("handleSecretGet value = %q, want hunter2", getOut.Value)
	}
}

func TestHandleSecretGetMissingName(t *testing.T) {
	s := testServer(t)
	if _, _, err := s.handleSecretGet(context.Background(), nil, SecretGetInput{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestHandleSecretGetNotFound(t *testing.T) {
	s := testServer(t)
	if _, _, err := s.handleSecretGet(context.Background(), nil, SecretGetInput{Name: "nope"}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestHandleSecretList(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		if _, _, err := s.handleSecretSet(ctx, nil, SecretSetInput{Name: name, Value: "v"}); err != nil {
			t.Fatalf("handleSecretSet(%s): %v", name, err)
		}
	}

	_, out, err := s.handleSecretList(ctx, nil, SecretListInput{})
	if err != nil {
		t.Fatalf("handleSecretList: %v", err)
	}
	if len(out.Secrets) != 2 {
		t.Fatalf("got %d secrets, want 2", len(out.Secrets))
	}
	if out.Secrets[0].Name != "alpha" || out.Secrets[1].Name != "beta" {
		t.Errorf("unexpected secret order: %+v", out.Secrets)
	}
}

func TestHandleSecretDelete(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	if _, _, err := s.handleSecretSet(ctx, nil, SecretSetInput{Name: "temp", Value: "v"}); err != nil {
		t.Fatalf("handleSecretSet: %v", err)
	}
	if _, _, err := s.handleSecretDelete(ctx, nil, SecretDeleteInput{Name: "temp"}); err != nil {
		t.Fatalf("handleSecretDelete: %v", err)
	}
	if _, _, err := s.handleSecretGet(ctx, nil, SecretGetInput{Name: "temp"}); err == nil {
		t.Error("expected secret to be gone after delete")
	}
}

func TestHandleSecretDeleteNotFound(t *testing.T) {
	s := testServer(t)
	if _, _, err := s.handleSecretDelete(context.Background(), nil, SecretDeleteInput{Name: "ghost"}); err == nil {
		t.Fatal("expected error deleting a secret that does not exist")
	}
}

func TestHandleSecretSetMissingName(t *testing.T) {
	s := testServer(t)
	if _, _, err := s.handleSecretSet(context.Background(), nil, SecretSetInput{Value: "v"}); err == nil {
		t.Fatal("expected error for empty name")
	}
}
