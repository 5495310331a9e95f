package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/display"
)

// DeletedCmd reports residual rows: tombstoned records and rows present
// only in the WAL sidecar.
var DeletedCmd = &cobra.Command{
	Use:   "deleted <table>",
	Short: "Report residual (deleted but recoverable) rows",
	Long: `Walk the table and report every row the detector tags residual:
rows whose tombstone column is set, and rows visible only through the
WAL sidecar. Detection uses storage metadata only, never content
heuristics; rows without metadata are reported as liveness unknown by
the rows command, not here.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleted,
}

func runDeleted(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	table := args[0]
	residual, cols, err := sess.ResidualRows(cmd.Context(), table)
	if err != nil {
		return err
	}

	renderer := sess.Renderer()
	out := make([]rowOutput, 0, len(residual))
	for _, row := range residual {
		view := rowOutput{
			RowID:    row.RowID,
			Liveness: row.Liveness.String(),
			Cells:    make([]cellView, len(row.Cells)),
		}
		for i, cell := range row.Cells {
			view.Cells[i] = cellView{
				Column:  cols[i].Name,
				Display: renderer.Cell(cell, cols[i]),
				Raw:     cell.RawString(),
			}
		}
		out = append(out, view)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out)
	}

	if len(out) == 0 {
		pterm.Info.Printf("No residual rows in %s\n", table)
		return nil
	}
	pterm.DefaultSection.Printf("%d residual rows in %s", len(out), table)
	for _, row := range out {
		pterm.Println(pterm.LightRed(pterm.Sprintf("rowid %d", row.RowID)))
		for _, cell := range row.Cells {
			pterm.Printf("  %s: %s\n", pterm.LightCyan(cell.Column), cell.Display)
		}
	}
	return nil
}
