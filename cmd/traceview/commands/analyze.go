package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/display"
)

// AnalyzeCmd reports per-column inference results for one table.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <table>",
	Short: "Per-column capability, codec, and sample report",
	Long: `Analyze one table: sample its rows, infer which columns hold encoded
timestamps and which codec they use, classify payload columns, and
report a sample rendering per column alongside the raw stored value.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	summary, err := sess.Summarize(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(summary)
	}

	pterm.DefaultSection.Printf("%s (%d rows, %d residual)",
		summary.Table, summary.RowCount, summary.Residual)

	data := pterm.TableData{{"Column", "Declared", "Capability", "Codec", "Hint", "Sample", "Raw"}}
	for _, col := range summary.Columns {
		hint := ""
		if col.Hinted {
			hint = "yes"
		}
		data = append(data, []string{
			col.Name, col.DeclaredType, col.Capability, col.CodecID, hint, col.Sample, col.RawSample,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
