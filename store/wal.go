package store

import (
	"context"
	"database/sql"
	"os"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/logger"
)

// WALOnlyRowIDs returns the rowids of table that are visible in the full
// view (WAL replayed) but absent from the baseline view (main database
// image only): rows physically present only in the -wal sidecar.
//
// Returns ErrMetadataUnavailable when the baseline view could not be
// opened or the table has no rowids to compare.
func (s *Store) WALOnlyRowIDs(ctx context.Context, table string) (map[int64]bool, error) {
	if _, err := os.Stat(s.path + "-wal"); err != nil {
		// No sidecar: the full and baseline views are identical.
		return map[int64]bool{}, nil
	}

	if s.base == nil {
		return nil, errors.Wrap(errors.ErrMetadataUnavailable, "baseline view unavailable")
	}

	fullIDs, err := rowIDs(ctx, s.full, table)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrMetadataUnavailable),
			"failed to read rowids from full view")
	}
	baseIDs, err := rowIDs(ctx, s.base, table)
	if err != nil {
		if isNoSuchTable(err) {
			// The table itself only exists in the WAL: every row is WAL-only.
			return fullIDs, nil
		}
		return nil, errors.Wrap(errors.Mark(err, errors.ErrMetadataUnavailable),
			"failed to read rowids from baseline view")
	}

	walOnly := make(map[int64]bool)
	for id := range fullIDs {
		if !baseIDs[id] {
			walOnly[id] = true
		}
	}
	if len(walOnly) > 0 {
		s.log.Debugw("WAL-only rows detected",
			logger.FieldTable, table,
			logger.FieldRowCount, len(walOnly),
		)
	}
	return walOnly, nil
}

// AnnotateWAL fills the WAL fields of metas for the given table. A
// metadata failure degrades the metas (HasWALInfo stays false) and is
// reported to the caller for logging, never as a fatal error.
func (s *Store) AnnotateWAL(ctx context.Context, table string, metas []RowMeta) error {
	walOnly, err := s.WALOnlyRowIDs(ctx, table)
	if err != nil {
		return err
	}
	for i := range metas {
		metas[i].HasWALInfo = true
		metas[i].WALOnly = walOnly[metas[i].RowID]
	}
	return nil
}

func rowIDs(ctx context.Context, db *sql.DB, table string) (map[int64]bool, error) {
	ident, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT rowid FROM "+ident)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
