package acquire

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/store"
	"github.com/traceviewhq/traceview/store/testutil"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(path, []string{"Z_OPT", "DELETED", "IS_DELETED"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNextBatchCount(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 10))
	a := New(s, 3)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), cur.Remaining())

	// 10 rows at batch size 3 drain in exactly 4 batches.
	var sizes []int
	for {
		batch, err := a.Next(context.Background(), cur, 0)
		if errors.IsEndOfData(err) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(batch.Rows))
	}
	assert.Equal(t, []int{3, 3, 3, 1}, sizes)
	assert.Equal(t, int64(0), cur.Remaining())
}

func TestNextPreservesOrderAcrossBatches(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 7))
	a := New(s, 2)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	var ids []int64
	for {
		batch, err := a.Next(context.Background(), cur, 0)
		if errors.IsEndOfData(err) {
			break
		}
		require.NoError(t, err)
		for _, r := range batch.Rows {
			ids = append(ids, r.Cells[0].Int)
		}
	}

	require.Len(t, ids, 7)
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestNextReturnsFreshBatches(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 4))
	a := New(s, 2)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	first, err := a.Next(context.Background(), cur, 0)
	require.NoError(t, err)
	second, err := a.Next(context.Background(), cur, 0)
	require.NoError(t, err)

	// Retained batches must not alias each other.
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.Offset, second.Offset)
	assert.Equal(t, int64(1), first.Rows[0].Cells[0].Int)
	assert.Equal(t, int64(3), second.Rows[0].Cells[0].Int)
}

func TestStaleCursor(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 5))
	a := New(s, 2)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	_, err = a.Next(context.Background(), cur, 0)
	require.NoError(t, err)

	a.Invalidate()

	_, err = a.Next(context.Background(), cur, 0)
	assert.True(t, errors.IsStaleCursor(err))

	// A cursor opened after the invalidation works again.
	fresh, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)
	_, err = a.Next(context.Background(), fresh, 0)
	assert.NoError(t, err)
}

func TestNextHonorsCancellation(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 5))
	a := New(s, 2)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Next(ctx, cur, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenUnknownTable(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 1))
	a := New(s, 2)

	_, err := a.Open(context.Background(), "MISSING", "")
	assert.True(t, errors.Is(err, errors.ErrTableNotFound))
}

func TestNextEmptyTable(t *testing.T) {
	path := testutil.CreateCapture(t, `CREATE TABLE EMPTY (ID INTEGER PRIMARY KEY)`)
	s := openStore(t, path)
	a := New(s, 4)

	cur, err := a.Open(context.Background(), "EMPTY", "")
	require.NoError(t, err)

	_, err = a.Next(context.Background(), cur, 0)
	assert.True(t, errors.IsEndOfData(err))
}

func TestNextMaxRowsOverride(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 6))
	a := New(s, 4)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	batch, err := a.Next(context.Background(), cur, 2)
	require.NoError(t, err)
	assert.Len(t, batch.Rows, 2)
}

func TestWalk(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 5))
	a := New(s, 2)

	var seen int
	err := a.Walk(context.Background(), "EVENTS", "", func(b *record.Batch) (bool, error) {
		seen += len(b.Rows)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
}

func TestWalkEarlyStop(t *testing.T) {
	s := openStore(t, testutil.SeedNumberedRows(t, 10))
	a := New(s, 3)

	var batches int
	err := a.Walk(context.Background(), "EVENTS", "", func(b *record.Batch) (bool, error) {
		batches++
		return batches < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batches)
}

func TestBatchLiveness(t *testing.T) {
	s := openStore(t, testutil.SeedChatCapture(t))
	a := New(s, 10)

	cur, err := a.Open(context.Background(), "ZMESSAGE", "")
	require.NoError(t, err)

	batch, err := a.Next(context.Background(), cur, 0)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 5)

	assert.Equal(t, record.LivenessLive, batch.Rows[0].Liveness)
	assert.Equal(t, record.LivenessResidual, batch.Rows[2].Liveness, "Z_OPT = 1 marks the row residual")
	assert.Equal(t, record.LivenessLive, batch.Rows[4].Liveness)
}

func TestBatchWALOnlyRowResidual(t *testing.T) {
	s := openStore(t, testutil.SeedWALCapture(t))
	a := New(s, 10)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	batch, err := a.Next(context.Background(), cur, 0)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)

	// The checkpointed row is live; the row present only in the sidecar
	// is residual even though EVENTS has no tombstone column.
	assert.Equal(t, record.LivenessLive, batch.Rows[0].Liveness)
	assert.Equal(t, record.LivenessResidual, batch.Rows[1].Liveness)
}

func TestBatchLivenessUnknownWithoutMetadata(t *testing.T) {
	// A sidecar on disk with no baseline view makes WAL metadata
	// underivable; with no tombstone column either, liveness degrades
	// to unknown instead of guessing.
	path := testutil.SeedNumberedRows(t, 3)
	require.NoError(t, os.WriteFile(path+"-wal", []byte{}, 0o644))

	full, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	require.NoError(t, err)
	defer full.Close()

	s := store.NewWithDB(path, full, nil, nil)
	a := New(s, 10)

	cur, err := a.Open(context.Background(), "EVENTS", "")
	require.NoError(t, err)

	batch, err := a.Next(context.Background(), cur, 0)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 3)
	for _, row := range batch.Rows {
		assert.Equal(t, record.LivenessUnknown, row.Liveness)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		meta store.RowMeta
		want record.Liveness
	}{
		{"no metadata at all", store.RowMeta{}, record.LivenessUnknown},
		{"tombstone clear", store.RowMeta{HasTombstone: true}, record.LivenessLive},
		{"tombstone set", store.RowMeta{HasTombstone: true, Tombstoned: true}, record.LivenessResidual},
		{"wal info, in main image", store.RowMeta{HasWALInfo: true}, record.LivenessLive},
		{"wal only", store.RowMeta{HasWALInfo: true, WALOnly: true}, record.LivenessResidual},
		{"tombstone clear but wal only", store.RowMeta{HasTombstone: true, HasWALInfo: true, WALOnly: true}, record.LivenessResidual},
		{"both sources clean", store.RowMeta{HasTombstone: true, HasWALInfo: true}, record.LivenessLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.meta))
		})
	}
}
