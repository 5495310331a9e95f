// Package infer implements the timestamp inference engine: given a
// sampled column of cells, it decides the single best-fit codec, or that
// the column is not a timestamp column at all.
//
// Candidacy is all-or-nothing: a codec survives only if every non-null
// sampled value decodes inside its valid range. Partial matches
// disqualify the codec, because mixed-unit columns are not supported and
// must not be silently corrupted. Ties among surviving codecs resolve by
// fixed registry priority; a unit-bearing column-name hint may promote a
// codec that already survived, never one that did not.
package infer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/traceviewhq/traceview/classify"
	"github.com/traceviewhq/traceview/codec"
	"github.com/traceviewhq/traceview/record"
)

// Result is the column-level inference outcome.
type Result struct {
	Capability record.Capability
	// CodecID is set only when Capability is record.CapTimestamp.
	CodecID string
}

// Engine infers column capabilities over sampled cells. It is read-only
// after construction and safe for concurrent use across pipelines.
type Engine struct {
	registry   *codec.Registry
	classifier *classify.Classifier
	extraHints []string
}

// New returns an inference engine over the given registry.
func New(registry *codec.Registry, classifier *classify.Classifier, extraHints []string) *Engine {
	return &Engine{
		registry:   registry,
		classifier: classifier,
		extraHints: extraHints,
	}
}

// InferColumn decides the capability of one column from its sampled
// cells. Null cells never disqualify a column; a column of only nulls is
// plain.
func (e *Engine) InferColumn(cells []record.Cell, columnName string) Result {
	candidates := e.codecCandidates(cells)
	if len(candidates) > 0 {
		return Result{
			Capability: record.CapTimestamp,
			CodecID:    e.pickCodec(candidates, columnName),
		}
	}
	return Result{Capability: e.nonTimestampCapability(cells)}
}

// TimestampHinted reports whether the column name carries timestamp
// semantics, including the session's extra hint keywords. Presentation
// uses this for header annotations; it never affects candidacy.
func (e *Engine) TimestampHinted(columnName string) bool {
	return HasTimestampHint(columnName, e.extraHints)
}

// codecCandidates returns the codecs that decode every non-null sampled
// value, in registry priority order.
func (e *Engine) codecCandidates(cells []record.Cell) []*codec.Codec {
	var survivors []*codec.Codec
	sawValue := false

	for _, c := range e.registry.Codecs() {
		ok := true
		for _, cell := range cells {
			switch cell.Class {
			case record.ClassNull:
				continue
			case record.ClassInteger:
				sawValue = true
				if !c.InRange(cell.Int) {
					ok = false
				}
			case record.ClassReal:
				sawValue = true
				if !c.InRangeFloat(cell.Real) {
					ok = false
				}
			default:
				// Text or blob anywhere in the column rules out every codec.
				return nil
			}
			if !ok {
				break
			}
		}
		if ok {
			survivors = append(survivors, c)
		}
	}

	if !sawValue {
		// All-null columns are never forced into timestamp.
		return nil
	}
	return survivors
}

// pickCodec applies the deterministic tie-break: registry priority
// order, with a unit-bearing name hint promoting a codec that is already
// a candidate.
func (e *Engine) pickCodec(candidates []*codec.Codec, columnName string) string {
	if hinted, ok := UnitHint(columnName); ok {
		for _, c := range candidates {
			if c.ID == hinted {
				return c.ID
			}
		}
	}
	return candidates[0].ID
}

// nonTimestampCapability resolves a column that is not a timestamp. The
// column takes a single capability only when every non-null cell agrees;
// a column mixing blob renderings falls back to hex (always renderable),
// anything else to plain.
func (e *Engine) nonTimestampCapability(cells []record.Cell) record.Capability {
	agreed := record.CapPlain
	sawValue := false
	allBlobs := true

	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		if cell.Class != record.ClassBlob {
			allBlobs = false
		}

		got := e.classifier.Classify(cell)
		if got == record.CapTimestamp {
			// Individually plausible numbers in a column that failed
			// all-or-nothing candidacy render as plain.
			got = record.CapPlain
		}
		if !sawValue {
			agreed = got
			sawValue = true
			continue
		}
		if got != agreed {
			if allBlobs {
				return record.CapHex
			}
			return record.CapPlain
		}
	}

	if !sawValue {
		return record.CapPlain
	}
	return agreed
}

// InferColumns runs InferColumn for every column of a sample in
// parallel. Columns are independent and read-only during a batch's
// processing, so fan-out is safe. Results align with columns by index.
func (e *Engine) InferColumns(ctx context.Context, columns []record.Column, samples [][]record.Cell) ([]Result, error) {
	results := make([]Result, len(columns))

	g, _ := errgroup.WithContext(ctx)
	for i := range columns {
		i := i
		g.Go(func() error {
			results[i] = e.InferColumn(samples[i], columns[i].Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ColumnSamples transposes sampled rows into per-column cell slices for
// InferColumns.
func ColumnSamples(columns []record.Column, rows []record.Row) [][]record.Cell {
	samples := make([][]record.Cell, len(columns))
	for i := range samples {
		samples[i] = make([]record.Cell, 0, len(rows))
	}
	for _, row := range rows {
		for i, cell := range row.Cells {
			if i < len(samples) {
				samples[i] = append(samples[i], cell)
			}
		}
	}
	return samples
}
