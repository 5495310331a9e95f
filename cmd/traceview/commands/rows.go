package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/display"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/render"
)

// RowsCmd dumps decoded rows with liveness tags.
var RowsCmd = &cobra.Command{
	Use:   "rows <table>",
	Short: "Dump decoded rows with liveness tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runRows,
}

var (
	rowsLimitFlag int
	rowsSortFlag  string
	rowsHexFlag   bool
)

func init() {
	RowsCmd.Flags().IntVar(&rowsLimitFlag, "limit", 50, "Maximum rows to print (0 for all)")
	RowsCmd.Flags().StringVar(&rowsSortFlag, "sort", "", "Column to sort by (rowid order otherwise)")
	RowsCmd.Flags().BoolVar(&rowsHexFlag, "hex", false, "Append a full hex dump for blob cells")
}

type rowOutput struct {
	RowID    int64      `json:"rowid"`
	Liveness string     `json:"liveness"`
	Cells    []cellView `json:"cells"`
}

type cellView struct {
	Column  string `json:"column"`
	Display string `json:"display"`
	Raw     string `json:"raw"`
	HexDump string `json:"hex_dump,omitempty"`
}

func runRows(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	table := args[0]
	renderer := sess.Renderer()

	var out []rowOutput
	err = sess.Batches(cmd.Context(), table, rowsSortFlag, func(b *record.Batch) (bool, error) {
		for _, row := range b.Rows {
			view := rowOutput{
				RowID:    row.RowID,
				Liveness: row.Liveness.String(),
				Cells:    make([]cellView, len(row.Cells)),
			}
			for i, cell := range row.Cells {
				view.Cells[i] = cellView{
					Column:  b.Columns[i].Name,
					Display: renderer.Cell(cell, b.Columns[i]),
					Raw:     cell.RawString(),
				}
				if rowsHexFlag && cell.Class == record.ClassBlob {
					view.Cells[i].HexDump = render.HexDump(cell.Blob)
				}
			}
			out = append(out, view)
			if rowsLimitFlag > 0 && len(out) >= rowsLimitFlag {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out)
	}

	for _, row := range out {
		header := pterm.Sprintf("rowid %d [%s]", row.RowID, row.Liveness)
		if row.Liveness == record.LivenessResidual.String() {
			header = pterm.LightRed(header)
		}
		pterm.Println(header)
		for _, cell := range row.Cells {
			if cell.Display == cell.Raw {
				pterm.Printf("  %s: %s\n", pterm.LightCyan(cell.Column), cell.Display)
			} else {
				pterm.Printf("  %s: %s  (raw %s)\n", pterm.LightCyan(cell.Column), cell.Display, cell.Raw)
			}
			if cell.HexDump != "" {
				pterm.Println(cell.HexDump)
			}
		}
	}
	return nil
}
