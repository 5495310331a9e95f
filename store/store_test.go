package store

import (
	"context"
	"os"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/store/testutil"
)

var defaultTombstones = []string{"Z_OPT", "DELETED", "IS_DELETED"}

func openSeeded(t *testing.T) *Store {
	t.Helper()
	path := testutil.SeedChatCapture(t)
	s, err := Open(path, defaultTombstones)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestListTables(t *testing.T) {
	s := openSeeded(t)

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ZCONTACT", "ZMESSAGE"}, tables)
}

func TestRowCount(t *testing.T) {
	s := openSeeded(t)

	count, err := s.RowCount(context.Background(), "ZMESSAGE")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestRowCountMissingTable(t *testing.T) {
	s := openSeeded(t)

	_, err := s.RowCount(context.Background(), "NO_SUCH_TABLE")
	assert.True(t, errors.Is(err, errors.ErrTableNotFound))
}

func TestColumns(t *testing.T) {
	s := openSeeded(t)

	cols, err := s.Columns(context.Background(), "ZMESSAGE")
	require.NoError(t, err)
	require.Len(t, cols, 6)

	assert.Equal(t, "Z_PK", cols[0].Name)
	assert.Equal(t, 1, cols[0].PrimaryKey)
	assert.Equal(t, "ZTIMESTAMP", cols[2].Name)
	assert.Equal(t, "INTEGER", cols[2].DeclaredType)
}

func TestTombstoneColumn(t *testing.T) {
	s := openSeeded(t)

	cols, err := s.Columns(context.Background(), "ZMESSAGE")
	require.NoError(t, err)

	name, ok := s.TombstoneColumn(cols)
	assert.True(t, ok)
	assert.Equal(t, "Z_OPT", name)

	contactCols, err := s.Columns(context.Background(), "ZCONTACT")
	require.NoError(t, err)
	_, ok = s.TombstoneColumn(contactCols)
	assert.False(t, ok)
}

func TestFetchRowsCellClasses(t *testing.T) {
	s := openSeeded(t)

	rows, metas, err := s.FetchRows(context.Background(), "ZMESSAGE", 0, 10, "")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	require.Len(t, metas, 5)

	first := rows[0]
	assert.Equal(t, int64(1), first.RowID)
	assert.Equal(t, record.ClassInteger, first.Cells[0].Class)
	assert.Equal(t, record.ClassText, first.Cells[3].Class)
	assert.Equal(t, "hello", first.Cells[3].Text)
	assert.Equal(t, record.ClassNull, first.Cells[5].Class)

	// Row 5 carries a PNG header blob.
	blob := rows[4].Cells[5]
	assert.Equal(t, record.ClassBlob, blob.Class)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, blob.Blob[:4])
}

func TestFetchRowsTombstoneMeta(t *testing.T) {
	s := openSeeded(t)

	_, metas, err := s.FetchRows(context.Background(), "ZMESSAGE", 0, 10, "")
	require.NoError(t, err)

	for _, m := range metas {
		assert.True(t, m.HasTombstone)
	}
	assert.False(t, metas[0].Tombstoned)
	assert.True(t, metas[2].Tombstoned, "row 3 has Z_OPT = 1")
}

func TestFetchRowsWindowing(t *testing.T) {
	path := testutil.SeedNumberedRows(t, 10)
	s, err := Open(path, defaultTombstones)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	var all []int64
	for offset := int64(0); offset < 10; offset += 3 {
		rows, _, err := s.FetchRows(ctx, "EVENTS", offset, 3, "")
		require.NoError(t, err)
		for _, r := range rows {
			all = append(all, r.Cells[0].Int)
		}
	}

	// Concatenated windows reproduce the full row set exactly once each.
	require.Len(t, all, 10)
	for i, id := range all {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestFetchRowsDeterministicRerun(t *testing.T) {
	path := testutil.SeedNumberedRows(t, 8)
	s, err := Open(path, defaultTombstones)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	first, _, err := s.FetchRows(ctx, "EVENTS", 2, 4, "SEQ")
	require.NoError(t, err)
	second, _, err := s.FetchRows(ctx, "EVENTS", 2, 4, "SEQ")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].RowID, second[i].RowID)
	}
}

func TestFetchRowsSortKey(t *testing.T) {
	path := testutil.SeedNumberedRows(t, 5)
	s, err := Open(path, defaultTombstones)
	require.NoError(t, err)
	defer s.Close()

	// SEQ runs opposite to insertion order.
	rows, _, err := s.FetchRows(context.Background(), "EVENTS", 0, 5, "SEQ")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	prev := int64(-1)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Cells[1].Int, prev)
		prev = r.Cells[1].Int
	}
}

func TestFetchRowsRejectsUnknownSortKey(t *testing.T) {
	s := openSeeded(t)

	_, _, err := s.FetchRows(context.Background(), "ZMESSAGE", 0, 10, "NOPE; DROP TABLE")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	got, err := quoteIdent("ZMESSAGE")
	require.NoError(t, err)
	assert.Equal(t, `"ZMESSAGE"`, got)

	_, err = quoteIdent(`bad"name`)
	assert.Error(t, err)

	_, err = quoteIdent("")
	assert.Error(t, err)
}

func TestWALOnlyRowIDsWithoutSidecar(t *testing.T) {
	s := openSeeded(t)

	walOnly, err := s.WALOnlyRowIDs(context.Background(), "ZMESSAGE")
	require.NoError(t, err)
	assert.Empty(t, walOnly)
}

func TestAnnotateWALWithoutSidecar(t *testing.T) {
	s := openSeeded(t)

	_, metas, err := s.FetchRows(context.Background(), "ZMESSAGE", 0, 10, "")
	require.NoError(t, err)

	require.NoError(t, s.AnnotateWAL(context.Background(), "ZMESSAGE", metas))
	for _, m := range metas {
		assert.True(t, m.HasWALInfo)
		assert.False(t, m.WALOnly)
	}
}

func TestListTablesAcquisitionFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnError(errors.New("disk I/O error"))

	s := NewWithDB("mock.db", db, nil, defaultTombstones)
	_, err = s.ListTables(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAcquisition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWALOnlyRowIDsDetectsSidecarRows(t *testing.T) {
	path := testutil.SeedWALCapture(t)
	s, err := Open(path, defaultTombstones)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	// Row 1 was checkpointed into the main image; row 2 lives only in
	// the sidecar, so only the full view sees it.
	walOnly, err := s.WALOnlyRowIDs(ctx, "EVENTS")
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{2: true}, walOnly)

	_, metas, err := s.FetchRows(ctx, "EVENTS", 0, 10, "")
	require.NoError(t, err)
	require.Len(t, metas, 2)

	require.NoError(t, s.AnnotateWAL(ctx, "EVENTS", metas))
	assert.True(t, metas[0].HasWALInfo)
	assert.False(t, metas[0].WALOnly)
	assert.True(t, metas[1].HasWALInfo)
	assert.True(t, metas[1].WALOnly)
}

func TestWALOnlyRowIDsMetadataUnavailable(t *testing.T) {
	// With a sidecar on disk but no baseline view, WAL diffing must
	// degrade to metadata-unavailable rather than guess.
	path := testutil.SeedChatCapture(t)
	require.NoError(t, os.WriteFile(path+"-wal", []byte{}, 0o644))

	full, err := openReadOnly(path, false)
	require.NoError(t, err)
	defer full.Close()

	s := NewWithDB(path, full, nil, defaultTombstones)
	_, err = s.WALOnlyRowIDs(context.Background(), "ZMESSAGE")
	assert.True(t, errors.Is(err, errors.ErrMetadataUnavailable))
}
