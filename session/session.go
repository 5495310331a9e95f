// Package session wires one capture's pipeline together: acquisition,
// inference, classification, search, and rendering, with a per-table
// cache of inference results.
//
// A session owns exactly one capture. Display zone and codec choices
// live here, never in process globals, so two concurrent sessions
// never bleed settings into each other.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/traceviewhq/traceview/acquire"
	"github.com/traceviewhq/traceview/classify"
	"github.com/traceviewhq/traceview/codec"
	"github.com/traceviewhq/traceview/config"
	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/infer"
	"github.com/traceviewhq/traceview/logger"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/render"
	"github.com/traceviewhq/traceview/search"
	"github.com/traceviewhq/traceview/store"
)

// Change records one column whose inferred capability or codec moved
// across a re-inference pass.
type Change struct {
	Table         string
	Column        string
	OldCapability record.Capability
	NewCapability record.Capability
	OldCodecID    string
	NewCodecID    string
}

// ChangeCallback receives re-inference change events.
type ChangeCallback func(Change)

// Session is one capture's pipeline instance.
type Session struct {
	store    *store.Store
	acquirer *acquire.Acquirer
	engine   *infer.Engine
	renderer *render.Renderer
	searcher *search.Engine

	sampleRows int64

	mu        sync.Mutex
	columns   map[string][]record.Column
	callbacks []ChangeCallback

	log *zap.SugaredLogger
}

// Open builds a session over the capture named by cfg.
func Open(cfg *config.Config) (*Session, error) {
	min, max := cfg.WindowBounds()
	registry, err := codec.NewRegistry(min, max)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path, cfg.Database.TombstoneColumns)
	if err != nil {
		return nil, err
	}

	classifier := classify.New(registry)
	renderer := render.New(registry, loc, cfg.Display.TimeFormat)

	return &Session{
		store:      st,
		acquirer:   acquire.New(st, int64(cfg.Acquire.BatchSize)),
		engine:     infer.New(registry, classifier, cfg.Infer.ExtraHints),
		renderer:   renderer,
		searcher:   search.New(renderer),
		sampleRows: int64(cfg.Infer.SampleRows),
		columns:    make(map[string][]record.Column),
		log:        logger.Logger,
	}, nil
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}

// Store exposes the underlying store for watcher construction.
func (s *Session) Store() *store.Store { return s.store }

// Renderer returns the session's display renderer.
func (s *Session) Renderer() *render.Renderer { return s.renderer }

// OnChange registers a callback for re-inference change events.
func (s *Session) OnChange(cb ChangeCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Tables lists the capture's tables.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	return s.store.ListTables(ctx)
}

// RowCount returns table's row count.
func (s *Session) RowCount(ctx context.Context, table string) (int64, error) {
	return s.store.RowCount(ctx, table)
}

// Columns returns table's columns with inferred capabilities and
// codecs. The result is computed once per table and cached for the
// session's lifetime; Reinfer and capture changes invalidate it.
func (s *Session) Columns(ctx context.Context, table string) ([]record.Column, error) {
	s.mu.Lock()
	if cols, ok := s.columns[table]; ok {
		s.mu.Unlock()
		return cols, nil
	}
	s.mu.Unlock()

	cols, err := s.inferTable(ctx, table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Another goroutine may have raced the same table; last write wins,
	// both computed from the same underlying sample.
	s.columns[table] = cols
	s.mu.Unlock()
	return cols, nil
}

// inferTable samples the table and runs per-column inference.
func (s *Session) inferTable(ctx context.Context, table string) ([]record.Column, error) {
	cur, err := s.acquirer.Open(ctx, table, "")
	if err != nil {
		return nil, err
	}

	batch, err := s.acquirer.Next(ctx, cur, s.sampleRows)
	if errors.IsEndOfData(err) {
		// Empty table: columns exist, every one is plain.
		cols, colErr := s.storeColumns(ctx, table)
		if colErr != nil {
			return nil, colErr
		}
		return cols, nil
	}
	if err != nil {
		return nil, err
	}

	cols := batch.Columns
	samples := infer.ColumnSamples(cols, batch.Rows)
	results, err := s.engine.InferColumns(ctx, cols, samples)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		cols[i].Capability = res.Capability
		cols[i].CodecID = res.CodecID
	}

	s.log.Debugw("table inferred",
		logger.FieldTable, table,
		logger.FieldSampleSize, len(batch.Rows),
	)
	return cols, nil
}

func (s *Session) storeColumns(ctx context.Context, table string) ([]record.Column, error) {
	infos, err := s.store.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	cols := make([]record.Column, len(infos))
	for i, ci := range infos {
		cols[i] = record.Column{Name: ci.Name, DeclaredType: ci.DeclaredType, Capability: record.CapPlain}
	}
	return cols, nil
}

// Reinfer drops table's cached inference, recomputes it from a fresh
// sample, and reports every column whose capability or codec changed.
func (s *Session) Reinfer(ctx context.Context, table string) ([]Change, error) {
	s.mu.Lock()
	old := s.columns[table]
	delete(s.columns, table)
	s.mu.Unlock()

	fresh, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, nil
	}

	var changes []Change
	for i := range fresh {
		if i >= len(old) {
			break
		}
		if old[i].Capability == fresh[i].Capability && old[i].CodecID == fresh[i].CodecID {
			continue
		}
		changes = append(changes, Change{
			Table:         table,
			Column:        fresh[i].Name,
			OldCapability: old[i].Capability,
			NewCapability: fresh[i].Capability,
			OldCodecID:    old[i].CodecID,
			NewCodecID:    fresh[i].CodecID,
		})
	}

	s.mu.Lock()
	callbacks := make([]ChangeCallback, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()
	for _, change := range changes {
		s.log.Infow("column inference changed",
			logger.FieldTable, change.Table,
			logger.FieldColumn, change.Column,
			logger.FieldCapability, change.NewCapability.String(),
			logger.FieldCodec, change.NewCodecID,
		)
		for _, cb := range callbacks {
			cb(change)
		}
	}
	return changes, nil
}

// InvalidateCursors poisons every outstanding cursor without touching
// the inference cache, so a following Reinfer can still diff against
// the pre-change results.
func (s *Session) InvalidateCursors() {
	s.acquirer.Invalidate()
}

// Invalidate drops every cached inference result and poisons all
// outstanding cursors. The capture watcher calls this on disk changes.
func (s *Session) Invalidate() {
	s.acquirer.Invalidate()
	s.mu.Lock()
	s.columns = make(map[string][]record.Column)
	s.mu.Unlock()
}

// Batches walks table in acquisition order, handing each batch to fn
// with inferred column metadata attached. fn returning false stops the
// walk early.
func (s *Session) Batches(ctx context.Context, table, sortKey string, fn func(*record.Batch) (bool, error)) error {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}
	return s.acquirer.Walk(ctx, table, sortKey, func(b *record.Batch) (bool, error) {
		// Fresh copy per batch: a consumer mutating batch columns must
		// not be able to corrupt the session's inference cache.
		b.Columns = append([]record.Column(nil), cols...)
		return fn(b)
	})
}

// Search walks the whole table and returns the rows matching pred, in
// acquisition order.
func (s *Session) Search(ctx context.Context, table string, pred search.Predicate) ([]record.Row, []record.Column, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	var hits []record.Row
	err = s.Batches(ctx, table, "", func(b *record.Batch) (bool, error) {
		hits = append(hits, s.searcher.FilterBatch(b, pred)...)
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return hits, cols, nil
}

// ResidualRows walks the whole table and returns the rows the detector
// tagged residual: tombstoned or present only in the WAL sidecar.
func (s *Session) ResidualRows(ctx context.Context, table string) ([]record.Row, []record.Column, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	var residual []record.Row
	err = s.Batches(ctx, table, "", func(b *record.Batch) (bool, error) {
		for _, row := range b.Rows {
			if row.Liveness == record.LivenessResidual {
				residual = append(residual, row)
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return residual, cols, nil
}
