package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/display"
	"github.com/traceviewhq/traceview/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show traceview version information",
	Long:  `Display version, build time, commit hash, and platform information for the traceview binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			if err := display.OutputJSON(info); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting JSON: %v\n", err)
			}
			return
		}

		fmt.Println(info.String())
		fmt.Printf("Platform: %s\n", info.Platform)
		fmt.Printf("Go: %s\n", info.GoVersion)
	},
}
