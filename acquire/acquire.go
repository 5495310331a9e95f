// Package acquire drives batched record acquisition: walking a capture
// table window by window, tagging each row with the metadata the
// deleted-record detector needs.
package acquire

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/logger"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/store"
)

// Cursor is an opaque position inside one table walk. A cursor minted
// before the capture changed on disk is stale and refuses to advance.
type Cursor struct {
	table      string
	sortKey    string
	offset     int64
	total      int64
	generation uint64
	columns    []store.ColumnInfo
}

// Table returns the table this cursor walks.
func (c *Cursor) Table() string { return c.table }

// Remaining returns how many rows the cursor has not yet yielded.
func (c *Cursor) Remaining() int64 {
	if c.offset >= c.total {
		return 0
	}
	return c.total - c.offset
}

// Acquirer reads a capture in bounded batches.
type Acquirer struct {
	store     *store.Store
	batchSize int64

	// generation increments when the capture changes on disk; cursors
	// carry the generation they were minted under.
	generation atomic.Uint64

	log *zap.SugaredLogger
}

// New creates an acquirer over st. batchSize bounds the rows fetched
// per Next call when the caller does not say otherwise.
func New(st *store.Store, batchSize int64) *Acquirer {
	if batchSize <= 0 {
		batchSize = 256
	}
	return &Acquirer{
		store:     st,
		batchSize: batchSize,
		log:       logger.Logger,
	}
}

// Invalidate marks every outstanding cursor stale. The session calls
// this when the capture watcher reports an on-disk change.
func (a *Acquirer) Invalidate() {
	a.generation.Add(1)
	a.log.Debugw("acquisition cursors invalidated",
		logger.FieldCapture, a.store.Path())
}

// Open positions a cursor at the start of table, ordered by sortKey
// (empty means rowid order). Returns ErrTableNotFound when the table
// does not exist.
func (a *Acquirer) Open(ctx context.Context, table, sortKey string) (*Cursor, error) {
	cols, err := a.store.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	total, err := a.store.RowCount(ctx, table)
	if err != nil {
		return nil, err
	}
	return &Cursor{
		table:      table,
		sortKey:    sortKey,
		total:      total,
		generation: a.generation.Load(),
		columns:    cols,
	}, nil
}

// Next fetches the next batch of at most maxRows rows (the acquirer's
// batch size when maxRows <= 0) and advances the cursor. Returns
// ErrEndOfData once the table is exhausted and ErrStaleCursor when the
// capture changed since the cursor was opened. Each call allocates a
// fresh batch; callers may retain batches across calls.
func (a *Acquirer) Next(ctx context.Context, cur *Cursor, maxRows int64) (*record.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "acquisition cancelled")
	}
	if cur.generation != a.generation.Load() {
		return nil, errors.Wrapf(errors.ErrStaleCursor,
			"capture changed since cursor opened on %s", cur.table)
	}
	if cur.offset >= cur.total {
		return nil, errors.ErrEndOfData
	}

	limit := maxRows
	if limit <= 0 {
		limit = a.batchSize
	}

	start := time.Now()
	rows, metas, err := a.store.FetchRows(ctx, cur.table, cur.offset, limit, cur.sortKey)
	if err != nil {
		return nil, err
	}

	// WAL metadata is best-effort. When it cannot be derived the rows
	// keep HasWALInfo false and liveness degrades to unknown.
	if err := a.store.AnnotateWAL(ctx, cur.table, metas); err != nil {
		a.log.Debugw("WAL annotation unavailable",
			logger.FieldTable, cur.table, logger.FieldError, err)
	}

	batch := &record.Batch{
		Table:   cur.table,
		Offset:  cur.offset,
		Columns: describeColumns(cur.columns),
		Rows:    rows,
	}
	for i := range batch.Rows {
		batch.Rows[i].Liveness = Detect(metas[i])
	}

	a.log.Debugw("batch acquired",
		logger.FieldTable, cur.table,
		logger.FieldOffset, cur.offset,
		logger.FieldRowCount, len(rows),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	cur.offset += int64(len(rows))
	if len(rows) == 0 {
		return nil, errors.ErrEndOfData
	}
	return batch, nil
}

// Walk drains table through fn one batch at a time, stopping on the
// first error or when fn returns false.
func (a *Acquirer) Walk(ctx context.Context, table, sortKey string, fn func(*record.Batch) (bool, error)) error {
	cur, err := a.Open(ctx, table, sortKey)
	if err != nil {
		return err
	}
	for {
		batch, err := a.Next(ctx, cur, 0)
		if errors.IsEndOfData(err) {
			return nil
		}
		if err != nil {
			return err
		}
		keep, err := fn(batch)
		if err != nil {
			return err
		}
		if !keep {
			return nil
		}
	}
}

func describeColumns(cols []store.ColumnInfo) []record.Column {
	out := make([]record.Column, len(cols))
	for i, c := range cols {
		out[i] = record.Column{
			Name:         c.Name,
			DeclaredType: c.DeclaredType,
			Capability:   record.CapPlain,
		}
	}
	return out
}
