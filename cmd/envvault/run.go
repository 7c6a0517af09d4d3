package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/whynaidu/envvault/internal/auditlog"
	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/secretselect"
	"github.com/whynaidu/envvault/vault"
)

var (
	runTimeout time.Duration
	runKeys    []string
)

func init() {
	runCmd.Flags().DurationVarP(&runTimeout, "timeout", "t", 5*time.Minute, "command timeout")
	runCmd.Flags().StringArrayVarP(&runKeys, "key", "k", nil, "secret name or glob pattern to inject (repeatable; default: all secrets)")
	runCmd.DisableFlagsInUseLine = true
}

var runCmd = &cobra.Command{
	Use:   "run -- command [args...]",
	Short: "Run a command with secrets injected as environment variables",
	Long: `Decrypts secrets in the current environment's vault and runs the
given command with them injected into its environment. Secret name "DB-URL"
becomes environment variable DB_URL (hyphens and dots become underscores).
Use -k/--key (repeatable, glob patterns supported) to inject only a subset;
with no -k flags, every secret is injected.

Example:
  envvault run -- psql "$DATABASE_URL"
  envvault run -k 'AWS_*' -k DB_PASSWORD -- ./deploy.sh`,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash == -1 || dash >= len(args) {
			return fmt.Errorf("no command specified; use: envvault run -- command [args...]")
		}
		return executeRun(args[dash:])
	},
}

func executeRun(commandArgs []string) error {
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
	defer func() { wipeEnvSecrets(secrets) }()

	if len(runKeys) > 0 {
		names := make([]string, 0, len(secrets))
		for name := range secrets {
			names = append(names, name)
		}
		selected, err := secretselect.ExpandPatterns(runKeys, names)
		if err != nil {
			return err
		}
		filtered := make(map[string]string, len(selected))
		for _, name := range selected {
			filtered[name] = secrets[name]
		}
		wipeEnvSecrets(secrets)
		secrets = filtered
	}

	log := openAuditLog()

	env := buildEnvironment(secrets)

	if err := disableCoreDumps(); err != nil {
		record(log, auditlog.OpRun, false, "", err.Error())
		return fmt.Errorf("security: failed to disable core dumps: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cmdPath, err := exec.LookPath(commandArgs[0])
	if err != nil {
		record(log, auditlog.OpRun, false, "", err.Error())
		return fmt.Errorf("command not found: %s", commandArgs[0])
	}

	child := exec.CommandContext(ctx, cmdPath, commandArgs[1:]...)
	child.Env = env
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	child.Cancel = func() error {
		return child.Process.Signal(terminateSignal())
	}
	child.WaitDelay = 5 * time.Second

	runErr := child.Run()
	if runErr != nil {
		record(log, auditlog.OpRun, false, "", runErr.Error())
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("command timed out after %s", runTimeout)
		}
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("command failed: %w", runErr)
	}
	record(log, auditlog.OpRun, true, "", fmt.Sprintf("ran %q with %d secrets injected", commandArgs[0], len(secrets)))
	return nil
}

// buildEnvironment appends every secret, converted to an environment
// variable name, to a copy of the current process environment.
func buildEnvironment(secrets map[string]string) []string {
	env := os.Environ()
	for name, value := range secrets {
		env = append(env, fmt.Sprintf("%s=%s", keyToEnvName(name), value))
	}
	return env
}

// keyToEnvName converts a secret name to a POSIX environment variable
// name: hyphens and dots become underscores, and the result is
// upper-cased.
func keyToEnvName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return strings.ToUpper(name)
}

// wipeEnvSecrets drops every entry from the decrypted secrets map.
// Go strings can't be zeroed in place, so — same as RotatePassword's
// wipeStringMap — this only releases the references for the GC to
// reclaim rather than scrubbing the backing memory.
func wipeEnvSecrets(secrets map[string]string) {
	for k := range secrets {
		delete(secrets, k)
	}
}
