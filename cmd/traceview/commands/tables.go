package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/display"
)

// TablesCmd lists the capture's tables.
var TablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the capture's tables with row counts",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

type tableListing struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

func runTables(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	names, err := sess.Tables(ctx)
	if err != nil {
		return err
	}

	listings := make([]tableListing, 0, len(names))
	for _, name := range names {
		count, err := sess.RowCount(ctx, name)
		if err != nil {
			return err
		}
		listings = append(listings, tableListing{Name: name, RowCount: count})
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(listings)
	}

	data := pterm.TableData{{"Table", "Rows"}}
	for _, l := range listings {
		data = append(data, []string{l.Name, pterm.Sprintf("%d", l.RowCount)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
