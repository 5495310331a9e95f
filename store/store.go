// Package store is the storage collaborator: read-only access to a
// SQLite capture, including the -wal sidecar, for the acquisition layer.
//
// The capture is evidence. Every connection is opened read-only and
// query_only; the store never writes, migrates, or vacuums. Two views
// are held when possible: the full view (WAL replayed, what the
// application would see) and the baseline view (immutable, main image
// only). Rows visible in the full view but absent from the baseline are
// physically present only in the write-ahead log.
package store

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/logger"
	"github.com/traceviewhq/traceview/record"
)

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	CID          int
	Name         string
	DeclaredType string
	NotNull      bool
	PrimaryKey   int // 1-based position in the primary key, 0 if not part of it
}

// RowMeta carries the page-level metadata the deleted-record detector
// consumes. When the store cannot supply a field, the corresponding
// Has* flag is false and liveness degrades to unknown.
type RowMeta struct {
	RowID int64

	HasTombstone bool
	Tombstoned   bool

	HasWALInfo bool
	WALOnly    bool
}

// Store provides read-only access to one capture.
type Store struct {
	path string
	full *sql.DB
	base *sql.DB // nil when the baseline view could not be opened

	tombstoneCols []string
	log           *zap.SugaredLogger
}

// Open opens the capture at path read-only. tombstoneCols names the
// columns (matched case-insensitively) whose non-zero value marks a row
// as logically deleted.
func Open(path string, tombstoneCols []string) (*Store, error) {
	full, err := openReadOnly(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open capture %s", path)
	}

	s := &Store{
		path:          path,
		full:          full,
		tombstoneCols: tombstoneCols,
		log:           logger.Logger,
	}

	// The baseline view ignores the -wal sidecar. Opening it can fail on
	// platforms or captures where immutable mapping is refused; that only
	// costs WAL-diff metadata, never the session.
	base, err := openReadOnly(path, true)
	if err != nil {
		s.log.Debugw("baseline view unavailable, WAL diffing disabled",
			logger.FieldCapture, path, logger.FieldError, err)
	} else {
		s.base = base
	}

	s.log.Infow("capture opened",
		logger.FieldCapture, path,
		logger.FieldWAL, s.base != nil,
	)
	return s, nil
}

func openReadOnly(path string, immutable bool) (*sql.DB, error) {
	dsn := "file:" + path + "?mode=ro"
	if immutable {
		dsn += "&immutable=1"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set query_only")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}
	// Force the connection to actually read the file so a missing or
	// corrupt capture fails here, not on first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB wraps existing connections as a Store. Tests use it to
// inject failures below the SQL layer; base may be nil.
func NewWithDB(path string, full, base *sql.DB, tombstoneCols []string) *Store {
	return &Store{
		path:          path,
		full:          full,
		base:          base,
		tombstoneCols: tombstoneCols,
		log:           logger.Logger,
	}
}

// Close releases both views.
func (s *Store) Close() error {
	var firstErr error
	if s.base != nil {
		firstErr = s.base.Close()
	}
	if err := s.full.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Path returns the capture path.
func (s *Store) Path() string { return s.path }

// ListTables returns the capture's table names in name order.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.full.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrAcquisition), "failed to list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// RowCount returns the number of rows in table under the full view.
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	ident, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}
	var count int64
	err = s.full.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+ident).Scan(&count)
	if err != nil {
		if isNoSuchTable(err) {
			return 0, errors.Wrapf(errors.ErrTableNotFound, "table %s", table)
		}
		return 0, errors.Wrapf(err, "failed to count rows in %s", table)
	}
	return count, nil
}

// Columns returns table's column descriptions from PRAGMA table_info.
func (s *Store) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	ident, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.full.QueryContext(ctx, "PRAGMA table_info("+ident+")")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read table_info for %s", table)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			ci      ColumnInfo
			notNull int
			dflt    sql.NullString
		)
		if err := rows.Scan(&ci.CID, &ci.Name, &ci.DeclaredType, &notNull, &dflt, &ci.PrimaryKey); err != nil {
			return nil, errors.Wrap(err, "failed to scan table_info row")
		}
		ci.NotNull = notNull != 0
		cols = append(cols, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.Wrapf(errors.ErrTableNotFound, "table %s", table)
	}
	return cols, nil
}

// TombstoneColumn returns the name of the first configured tombstone
// column present in cols.
func (s *Store) TombstoneColumn(cols []ColumnInfo) (string, bool) {
	for _, want := range s.tombstoneCols {
		for _, c := range cols {
			if strings.EqualFold(c.Name, want) {
				return c.Name, true
			}
		}
	}
	return "", false
}

// FetchRows reads one window of rows from table, starting at offset, at
// most limit rows, ordered by sortKey (a column name, validated against
// the table) with rowid as the stable tie-break, or by rowid alone when
// sortKey is empty. Re-running the same window against an unchanged
// capture yields identical rows in identical order.
func (s *Store) FetchRows(ctx context.Context, table string, offset, limit int64, sortKey string) ([]record.Row, []RowMeta, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	ident, err := quoteIdent(table)
	if err != nil {
		return nil, nil, err
	}

	order := "rowid"
	if sortKey != "" {
		found := false
		for _, c := range cols {
			if strings.EqualFold(c.Name, sortKey) {
				sortIdent, err := quoteIdent(c.Name)
				if err != nil {
					return nil, nil, err
				}
				order = sortIdent + ", rowid"
				found = true
				break
			}
		}
		if !found {
			return nil, nil, errors.Newf("sort key %q is not a column of %s", sortKey, table)
		}
	}

	withRowID := true
	query := "SELECT rowid, * FROM " + ident + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	rows, err := s.full.QueryContext(ctx, query, limit, offset)
	if err != nil {
		// WITHOUT ROWID tables refuse the rowid column; fall back to a
		// plain select with synthesized row identifiers.
		withRowID = false
		if order == "rowid" {
			order = "1"
		} else {
			order = strings.TrimSuffix(order, ", rowid")
		}
		query = "SELECT * FROM " + ident + " ORDER BY " + order + " LIMIT ? OFFSET ?"
		rows, err = s.full.QueryContext(ctx, query, limit, offset)
		if err != nil {
			return nil, nil, errors.Wrapf(errors.Mark(err, errors.ErrAcquisition),
				"failed to fetch rows from %s at offset %d", table, offset)
		}
	}
	defer rows.Close()

	tombstoneCol, hasTombstone := s.TombstoneColumn(cols)
	tombstoneIdx := -1
	if hasTombstone {
		for i, c := range cols {
			if c.Name == tombstoneCol {
				tombstoneIdx = i
			}
		}
	}

	var (
		out   []record.Row
		metas []RowMeta
	)
	for rows.Next() {
		extra := 0
		if withRowID {
			extra = 1
		}
		dest := make([]interface{}, len(cols)+extra)
		for i := range dest {
			dest[i] = new(interface{})
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to scan row from %s", table)
		}

		rowID := offset + int64(len(out))
		if withRowID {
			rowID, _ = (*dest[0].(*interface{})).(int64)
		}
		row := record.Row{RowID: rowID, Cells: make([]record.Cell, len(cols))}
		for i := range cols {
			row.Cells[i] = toCell(i, *dest[i+extra].(*interface{}))
		}

		meta := RowMeta{RowID: rowID}
		if tombstoneIdx >= 0 {
			meta.HasTombstone = true
			meta.Tombstoned = isTombstoned(row.Cells[tombstoneIdx])
		}

		out = append(out, row)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrapf(errors.Mark(err, errors.ErrAcquisition),
			"row iteration failed for %s", table)
	}
	return out, metas, nil
}

// toCell converts one scanned driver value into a tagged cell.
func toCell(col int, v interface{}) record.Cell {
	switch val := v.(type) {
	case nil:
		return record.NullCell(col)
	case int64:
		return record.IntCell(col, val)
	case float64:
		return record.RealCell(col, val)
	case string:
		return record.TextCell(col, val)
	case []byte:
		// Copy: the driver reuses scan buffers between rows.
		blob := make([]byte, len(val))
		copy(blob, val)
		return record.BlobCell(col, blob)
	default:
		return record.NullCell(col)
	}
}

// isTombstoned interprets a tombstone cell: any non-zero, non-null,
// non-empty value marks the row deleted.
func isTombstoned(c record.Cell) bool {
	switch c.Class {
	case record.ClassInteger:
		return c.Int != 0
	case record.ClassReal:
		return c.Real != 0
	case record.ClassText:
		return c.Text != "" && c.Text != "0"
	default:
		return false
	}
}

// quoteIdent quotes a SQL identifier. Identifiers embedding a double
// quote are refused outright rather than escaped: no legitimate capture
// schema names columns that way, and refusing is safer than guessing.
func quoteIdent(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty identifier")
	}
	if strings.ContainsAny(name, "\"\x00") {
		return "", errors.Newf("identifier %q contains forbidden characters", name)
	}
	return `"` + name + `"`, nil
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
