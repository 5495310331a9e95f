// Package testutil creates throwaway SQLite captures for tests.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// CreateCapture writes an empty SQLite database into a test temp
// directory, executes the given statements against it, and returns its
// path. The file persists until the test ends, so read-only stores can
// reopen it.
func CreateCapture(t *testing.T, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "statement failed: %s", stmt)
	}
	return path
}

// SeedChatCapture creates a capture with a LINE-style message table:
// millisecond timestamps, a Core Data tombstone column, JSON payloads,
// and one embedded PNG. Returns the capture path.
func SeedChatCapture(t *testing.T) string {
	t.Helper()

	stmts := []string{
		`CREATE TABLE ZMESSAGE (
			Z_PK INTEGER PRIMARY KEY,
			Z_OPT INTEGER,
			ZTIMESTAMP INTEGER,
			ZTEXT TEXT,
			ZPAYLOAD TEXT,
			ZATTACHMENT BLOB
		)`,
		`INSERT INTO ZMESSAGE VALUES
			(1, 0, 1700000000000, 'hello', '{"sticker":17}', NULL),
			(2, 0, 1700000060000, 'how are you', NULL, NULL),
			(3, 1, 1700000120000, 'this one was deleted', NULL, NULL),
			(4, 0, 1700000180000, NULL, '{"loc":{"lat":35.6,"lon":139.7}}', NULL),
			(5, 0, 1700000240000, 'photo', NULL, X'89504E470D0A1A0A0000000D49484452')`,
		`CREATE TABLE ZCONTACT (
			Z_PK INTEGER PRIMARY KEY,
			ZNAME TEXT,
			ZLASTSEEN INTEGER
		)`,
		`INSERT INTO ZCONTACT VALUES
			(1, 'alice', 1700000000),
			(2, 'bob', 1700003600)`,
	}
	return CreateCapture(t, stmts...)
}

// SeedWALCapture creates a capture in WAL journal mode whose last row
// exists only in the -wal sidecar: the first row is checkpointed into
// the main image, the second is inserted afterwards. The writer
// connection stays open for the test's lifetime so closing it does not
// checkpoint the sidecar away.
func SeedWALCapture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE EVENTS (ID INTEGER PRIMARY KEY, LABEL TEXT)`,
		`INSERT INTO EVENTS VALUES (1, 'committed')`,
		`PRAGMA wal_checkpoint(TRUNCATE)`,
		`INSERT INTO EVENTS VALUES (2, 'sidecar only')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "statement failed: %s", stmt)
	}
	return path
}

// SeedNumberedRows creates a capture whose single table holds n rows
// with predictable contents, for windowing and ordering tests.
func SeedNumberedRows(t *testing.T, n int) string {
	t.Helper()

	stmts := []string{
		`CREATE TABLE EVENTS (ID INTEGER PRIMARY KEY, SEQ INTEGER, LABEL TEXT)`,
	}
	for i := 1; i <= n; i++ {
		stmts = append(stmts, fmt.Sprintf(
			`INSERT INTO EVENTS VALUES (%d, %d, 'row-%04d')`, i, n-i, i))
	}
	return CreateCapture(t, stmts...)
}
