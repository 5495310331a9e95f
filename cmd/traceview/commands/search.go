package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/config"
	"github.com/traceviewhq/traceview/display"
	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/search"
)

// SearchCmd searches a table's decoded and raw values.
var SearchCmd = &cobra.Command{
	Use:   "search <table> <term>",
	Short: "Search decoded and raw values",
	Long: `Search every row of the table. The term is matched against the
decoded display form (so "2024-01" finds converted timestamps) and
against the raw stored representation (so raw millisecond values stay
searchable). NULL cells never match a term.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

var (
	searchModeFlag   string
	searchColumnFlag string
	searchCaseFlag   bool
	searchNullFlag   bool
)

func init() {
	SearchCmd.Flags().StringVar(&searchModeFlag, "mode", "", "Match mode: contains, prefix, suffix, exact (default from config)")
	SearchCmd.Flags().StringVar(&searchColumnFlag, "column", "", "Restrict the search to one column")
	SearchCmd.Flags().BoolVar(&searchCaseFlag, "case-sensitive", false, "Match case-sensitively")
	SearchCmd.Flags().BoolVar(&searchNullFlag, "null", false, "Match NULL cells instead of the term")
}

// caseSensitivity resolves the precedence between the --case-sensitive
// flag and the config default: an explicitly set flag wins either way,
// so --case-sensitive=false can override a config that enables it.
func caseSensitivity(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("case-sensitive") {
		return searchCaseFlag
	}
	return cfg.Search.CaseSensitive
}

func runSearch(cmd *cobra.Command, args []string) error {
	sess, cfg, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	table, term := args[0], args[1]

	modeName := searchModeFlag
	if modeName == "" {
		modeName = cfg.Search.DefaultMode
	}
	mode, err := search.ParseMode(modeName)
	if err != nil {
		return err
	}

	pred := search.Predicate{
		Term:          term,
		Scope:         search.ScopeAll,
		CaseSensitive: caseSensitivity(cmd, cfg),
		Mode:          mode,
		IsNull:        searchNullFlag,
	}

	cols, err := sess.Columns(cmd.Context(), table)
	if err != nil {
		return err
	}
	if searchColumnFlag != "" {
		found := false
		for i, c := range cols {
			if c.Name == searchColumnFlag {
				pred.Scope = i
				found = true
				break
			}
		}
		if !found {
			return errors.Newf("column %q not found in %s", searchColumnFlag, table)
		}
	}

	hits, cols, err := sess.Search(cmd.Context(), table, pred)
	if err != nil {
		return err
	}

	renderer := sess.Renderer()
	out := make([]rowOutput, 0, len(hits))
	for _, row := range hits {
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

	pterm.Info.Printf("%d rows match in %s\n", len(out), table)
	for _, row := range out {
		pterm.Println(pterm.Sprintf("rowid %d [%s]", row.RowID, row.Liveness))
		for _, cell := range row.Cells {
			pterm.Printf("  %s: %s\n", pterm.LightCyan(cell.Column), cell.Display)
		}
	}
	return nil
}
