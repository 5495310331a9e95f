// Package display routes command output: machine-readable JSON when
// requested, pterm-styled text otherwise.
package display

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON determines if a command should emit JSON based on
// its own --json flag or the global one.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return globalFlag
}

// OutputJSON marshals and prints v for machine consumption.
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
