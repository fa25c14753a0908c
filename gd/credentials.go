package gd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials holds the Garmin account credentials for one run
type Credentials struct {
	Username string
	Password string
}

// Prompt seams, replaceable in tests
var (
	readLine     = promptLine
	readPassword = promptPassword
)

// ResolveCredentials fills in credentials in order of preference: the given
// values (flag or config/env, already merged by the caller), then an
// interactive prompt. The password prompt hides its input when stdin is a
// terminal. Both values are whitespace-trimmed.
func ResolveCredentials(username, password string) (Credentials, error) {
	var err error

	if strings.TrimSpace(username) == "" {
		username, err = readLine("Garmin username: ")
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read username: %w", err)
		}
	}

	if strings.TrimSpace(password) == "" {
		password, err = readPassword("Garmin password: ")
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
	}

	creds := Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("username and password must be provided via flags, environment variables, or interactive prompt")
	}
	return creds, nil
}

// promptLine reads one line of visible input from stdin
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads hidden input when stdin is a terminal, falling back
// to a visible line read when it is not (pipes, CI)
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(prompt)
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
