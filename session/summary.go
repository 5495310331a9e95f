package session

import (
	"context"

	"github.com/traceviewhq/traceview/record"
)

// ColumnSummary is one line of a table analysis report.
type ColumnSummary struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	Capability   string `json:"capability"`
	CodecID      string `json:"codec,omitempty"`
	Hinted       bool   `json:"hinted"`
	// Sample is the rendered display form of the first non-null value.
	Sample string `json:"sample,omitempty"`
	// RawSample is that value's stored representation.
	RawSample string `json:"raw_sample,omitempty"`
}

// TableSummary is the analysis report for one table.
type TableSummary struct {
	Table    string          `json:"table"`
	RowCount int64           `json:"row_count"`
	Residual int             `json:"residual_rows"`
	Columns  []ColumnSummary `json:"columns"`
}

// Summarize analyzes table: row count, per-column inferred capability
// and codec, a sample rendering per column, and the residual row count.
func (s *Session) Summarize(ctx context.Context, table string) (*TableSummary, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	count, err := s.RowCount(ctx, table)
	if err != nil {
		return nil, err
	}

	summary := &TableSummary{
		Table:    table,
		RowCount: count,
		Columns:  make([]ColumnSummary, len(cols)),
	}
	for i, col := range cols {
		summary.Columns[i] = ColumnSummary{
			Name:         col.Name,
			DeclaredType: col.DeclaredType,
			Capability:   col.Capability.String(),
			CodecID:      col.CodecID,
			Hinted:       s.engine.TimestampHinted(col.Name),
		}
	}

	// The walk continues past the point where every column has a sample:
	// the residual count needs the whole table.
	sampled := make([]bool, len(cols))
	err = s.Batches(ctx, table, "", func(b *record.Batch) (bool, error) {
		for _, row := range b.Rows {
			if row.Liveness == record.LivenessResidual {
				summary.Residual++
			}
			for i, cell := range row.Cells {
				if sampled[i] || cell.IsNull() {
					continue
				}
				summary.Columns[i].Sample = s.renderer.Cell(cell, cols[i])
				summary.Columns[i].RawSample = cell.RawString()
				sampled[i] = true
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
