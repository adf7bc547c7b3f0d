// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the mx command tree: a small hand-rolled
// command dispatcher (pflag for flags, edit-distance suggestions for
// typos) plus the session file and config file handling shared by the
// commands.
package cli
