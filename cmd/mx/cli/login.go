// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/mxclient/client"
	"github.com/bureau-foundation/mxclient/lib/secret"
)

// LoginCommand returns the "login" command. This performs a Matrix
// login, verifies the session via WhoAmI, and saves the resulting
// session to the well-known path (~/.config/mx/session.json).
// Subsequent commands (whoami, send, rooms) load the session
// transparently, like SSH keys.
func LoginCommand() *Command {
	var homeserverURL string
	var passwordFile string

	return &Command{
		Name:    "login",
		Summary: "Authenticate with a homeserver",
		Description: `Log in to a Matrix homeserver and save the session locally.

After login, commands like "mx send" and "mx rooms" use the saved
session transparently — no flags needed.

The session file is stored at ~/.config/mx/session.json (or
$MX_SESSION_FILE if set, or $XDG_CONFIG_HOME/mx/session.json). The
file is written with mode 0600 (owner-only read/write) since it
contains an access token.

The password can be provided via --password-file (a path to a file
containing the password, or - for stdin) or prompted interactively
when the flag is omitted.`,
		Usage: "mx login <username> [flags]",
		Examples: []Example{
			{
				Description: "Log in interactively (prompts for password)",
				Command:     "mx login alice",
			},
			{
				Description: "Log in with explicit homeserver",
				Command:     "mx login alice --homeserver https://matrix.example.org",
			},
			{
				Description: "Log in with password from file",
				Command:     "mx login alice --password-file /path/to/password",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flags.StringVar(&homeserverURL, "homeserver", "", "Matrix homeserver URL (default: config file, else http://localhost:6167)")
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing password, or - for stdin (default: prompt)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("username is required\n\nUsage: mx login <username> [flags]")
			}
			username := args[0]
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument: %s", args[1])
			}

			config, err := LoadConfig()
			if err != nil {
				return err
			}
			if homeserverURL == "" {
				homeserverURL = config.Homeserver
			}
			if homeserverURL == "" {
				homeserverURL = "http://localhost:6167"
			}

			passwordBuffer, err := readLoginPassword(passwordFile)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer passwordBuffer.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			matrixClient, err := client.NewClient(client.ClientConfig{
				HomeserverURL: homeserverURL,
			})
			if err != nil {
				return fmt.Errorf("create matrix client: %w", err)
			}
			defer matrixClient.Close()

			response, err := matrixClient.LoginWithOptions(ctx, username, passwordBuffer, client.LoginOptions{
				DeviceDisplayName: config.DeviceName,
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			// Verify the session works before saving.
			userID, err := matrixClient.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("session verification failed: %w", err)
			}

			saved := &SavedSession{
				UserID:      userID.String(),
				AccessToken: response.AccessToken,
				DeviceID:    response.DeviceID,
				Homeserver:  homeserverURL,
			}
			if err := SaveSession(saved); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Logged in as %s\n", userID)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", SessionFilePath())
			return nil
		},
	}
}

// readLoginPassword reads a password for the login command. If
// passwordFile is empty, prompts interactively on the terminal.
// Otherwise, reads from the file path ("-" means stdin).
func readLoginPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}

	// Interactive prompt — read from terminal with echo disabled.
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, fmt.Errorf("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, err
	}
	return buffer, nil
}
