package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quill-lang/quill-ls/cmd/quill-ls/commands"
	"github.com/quill-lang/quill-ls/logger"
)

var rootCmd = &cobra.Command{
	Use:   "quill-ls",
	Short: "Language server for the Quill contract language",
	Long: `quill-ls speaks the Language Server Protocol over stdio.

It keeps editor buffers synchronized, publishes diagnostics as you type,
and serves completion, hover, and quick-fix requests for Quill source.

All logging goes to stderr; stdout is reserved for the protocol.

Examples:
  quill-ls serve           # Serve LSP over stdio (what editors run)
  quill-ls serve -vv       # Serve with debug logging on stderr
  quill-ls version         # Show version information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	// Editors that spawn the binary without arguments get the server.
	RunE: commands.ServeCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
