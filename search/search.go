// Package search evaluates search predicates against decoded rows.
// Matching consults both the display representation (so "2024" finds a
// converted date) and the raw stored representation (so forensic
// raw-value searches keep working).
package search

import (
	"strings"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/render"
)

// Mode selects how the term is compared against a cell's string forms.
type Mode string

const (
	ModeContains Mode = "contains"
	ModePrefix   Mode = "prefix"
	ModeSuffix   Mode = "suffix"
	ModeExact    Mode = "exact"
)

// ParseMode validates a mode name from config or a CLI flag.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeContains, ModePrefix, ModeSuffix, ModeExact:
		return Mode(strings.ToLower(s)), nil
	case "":
		return ModeContains, nil
	default:
		return "", errors.Newf("unknown search mode %q", s)
	}
}

// ScopeAll searches every column of the row.
const ScopeAll = -1

// Predicate is one search request. Scope is a column index or ScopeAll.
// IsNull matches NULL cells and ignores Term entirely.
type Predicate struct {
	Term          string
	Scope         int
	CaseSensitive bool
	Mode          Mode
	IsNull        bool
}

// Engine matches predicates against rows using the session renderer
// for display-form strings.
type Engine struct {
	renderer *render.Renderer
}

// New creates a search engine rendering display strings via r.
func New(r *render.Renderer) *Engine {
	return &Engine{renderer: r}
}

// Matches reports whether any in-scope cell of row satisfies pred.
// columns supplies the capability and codec metadata for display-form
// matching and must align with row.Cells.
func (e *Engine) Matches(row record.Row, columns []record.Column, pred Predicate) bool {
	for i, cell := range row.Cells {
		if pred.Scope != ScopeAll && pred.Scope != i {
			continue
		}
		if e.matchesCell(cell, columns[i], pred) {
			return true
		}
	}
	return false
}

func (e *Engine) matchesCell(cell record.Cell, col record.Column, pred Predicate) bool {
	if pred.IsNull {
		return cell.IsNull()
	}
	// NULL cells never match a term, not even the empty one.
	if cell.IsNull() {
		return false
	}

	if matchString(e.renderer.Cell(cell, col), pred) {
		return true
	}
	return matchString(cell.RawString(), pred)
}

func matchString(s string, pred Predicate) bool {
	term := pred.Term
	if !pred.CaseSensitive {
		s = strings.ToLower(s)
		term = strings.ToLower(term)
	}
	switch pred.Mode {
	case ModePrefix:
		return strings.HasPrefix(s, term)
	case ModeSuffix:
		return strings.HasSuffix(s, term)
	case ModeExact:
		return s == term
	default:
		return strings.Contains(s, term)
	}
}

// FilterBatch returns the rows of batch matching pred, preserving
// order. The batch itself is never mutated.
func (e *Engine) FilterBatch(batch *record.Batch, pred Predicate) []record.Row {
	var out []record.Row
	for _, row := range batch.Rows {
		if e.Matches(row, batch.Columns, pred) {
			out = append(out, row)
		}
	}
	return out
}
