// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dotandev/tranche/internal/cmd"
)

// Build-time variables injected via -ldflags.
var (
	version   = "dev"
	commitSHA = "unknown"
)

func run(execute func() error, stderr io.Writer) int {
	err := execute()
	switch {
	case err == nil:
		return 0
	case cmd.IsInterrupted(err):
		fmt.Fprintln(stderr, "Interrupted. Shutting down...")
	default:
		fmt.Fprintln(stderr, cmd.FormatError(err))
	}
	return cmd.ExitCode(err)
}

func main() {
	cmd.Version = version
	cmd.CommitSHA = commitSHA
	os.Exit(run(cmd.Execute, os.Stderr))
}
