package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/whynaidu/envvault/internal/cryptoprim"
	"github.com/whynaidu/envvault/internal/pwstrength"
)

// promptPassword reads a password from the controlling terminal without
// echoing it. When stdin is not a terminal (e.g. piped input in CI), it
// still prints the prompt but reads a single plain line instead of doing
// a masked terminal read.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return []byte(line), nil
	}
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// promptNewPassword prompts twice and requires the two entries to match.
func promptNewPassword() ([]byte, error) {
	first, err := promptPassword("Enter master password: ")
	if err != nil {
		return nil, err
	}
	second, err := promptPassword("Confirm master password: ")
	if err != nil {
		cryptoprim.SecureWipe(first)
		return nil, err
	}
	defer cryptoprim.SecureWipe(second)

	if string(first) != string(second) {
		cryptoprim.SecureWipe(first)
		return nil, fmt.Errorf("passwords do not match")
	}

	fmt.Printf("Password strength: %s\n", pwstrength.Rate(string(first)))
	return first, nil
}
