// CLASSIFICATION: COMMUNITY
// Filename: cli.go v0.3
// Date Modified: 2026-10-17
// Author: Lukas Bower
//
// ─────────────────────────────────────────────────────────────
// pubserve · CLI
//
// Cobra root command for the pubserve binary. Sub-commands:
//
//   serve    run the file server
//   check    show how request paths are classified
//   version  print the version
//
// Example:
//
//   pubserve serve --root ./public --port 8080
//   pubserve check /hello.txt /folder/.env
// ─────────────────────────────────────────────────────────────
package tooling

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at link time.
var Version = "0.1.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pubserve",
		Short: "Serve a directory without exposing hidden files",
		Long: `pubserve serves the regular files under one directory over HTTP.

Any request whose path has a ".." segment or a segment starting with "."
(other than ".") gets the same 404 as a missing file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCheckCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pubserve version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pubserve v%s\n", Version)
		},
	}
}

// Execute runs the CLI.  Typically called from main().
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
