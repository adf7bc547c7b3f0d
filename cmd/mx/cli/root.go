// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// Root returns the top-level "mx" command tree.
func Root() *Command {
	return &Command{
		Name:    "mx",
		Summary: "Matrix client-server API command line",
		Description: `mx is a command-line Matrix client. Authenticate once with
"mx login"; the saved session is then used transparently by every
other command.`,
		Subcommands: []*Command{
			LoginCommand(),
			LogoutCommand(),
			WhoAmICommand(),
			SendCommand(),
			JoinCommand(),
			RoomsCommand(),
		},
	}
}
