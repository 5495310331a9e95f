package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/cmd/traceview/commands"
	"github.com/traceviewhq/traceview/logger"
)

var rootCmd = &cobra.Command{
	Use:   "traceview",
	Short: "traceview - Forensic inspector for mobile-chat SQLite captures",
	Long: `traceview - Forensic inspector for mobile-chat SQLite captures.

traceview opens a capture read-only, infers which columns hold encoded
timestamps (Unix seconds/milliseconds/microseconds, WebKit, Cocoa),
classifies payload cells (JSON, images, hex), and surfaces residual
rows: tombstoned records and rows present only in the WAL sidecar.

Available commands:
  tables   - List the capture's tables with row counts
  analyze  - Per-column capability, codec, and sample report
  rows     - Dump decoded rows with liveness tags
  deleted  - Report residual (deleted but recoverable) rows
  search   - Search decoded and raw values
  watch    - Re-run analysis whenever the capture changes on disk
  version  - Show version information

Examples:
  traceview tables --db chat.db
  traceview analyze ZMESSAGE --db chat.db
  traceview deleted ZMESSAGE --db chat.db --json
  traceview search ZMESSAGE "2024-01" --db chat.db`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
		if err := logger.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
			logger.SetVerbose()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite capture (overrides config)")
	rootCmd.PersistentFlags().String("config", "", "Path to traceview.toml")
	rootCmd.PersistentFlags().Bool("json", false, "Emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(commands.TablesCmd)
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.RowsCmd)
	rootCmd.AddCommand(commands.DeletedCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
