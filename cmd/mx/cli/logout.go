// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// LogoutCommand returns the "logout" command. It invalidates the saved
// access token server-side and removes the session file.
func LogoutCommand() *Command {
	var everywhere bool

	return &Command{
		Name:    "logout",
		Summary: "Invalidate the saved session",
		Description: `Log out of the homeserver and remove the saved session file.

With --all, every access token for the account is invalidated,
including sessions on other devices.`,
		Usage: "mx logout [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("logout", pflag.ContinueOnError)
			flags.BoolVar(&everywhere, "all", false, "invalidate all sessions for the account, not just this one")
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			matrixClient, _, err := ConnectFromSession()
			if err != nil {
				return err
			}
			defer matrixClient.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if everywhere {
				err = matrixClient.LogoutAll(ctx)
			} else {
				err = matrixClient.Logout(ctx)
			}
			if err != nil {
				// The token may already be invalid; remove the local
				// file anyway so the user isn't stuck.
				if removeErr := RemoveSession(); removeErr != nil {
					return fmt.Errorf("%w (and removing session file: %v)", err, removeErr)
				}
				return err
			}

			if err := RemoveSession(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Logged out")
			return nil
		},
	}
}
