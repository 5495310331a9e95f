package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceviewhq/traceview/codec"
	"github.com/traceviewhq/traceview/record"
)

func testRegistry(t *testing.T) *codec.Registry {
	t.Helper()
	min := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := codec.NewRegistry(min, max)
	require.NoError(t, err)
	return r
}

func TestTimestampRendersInDisplayZone(t *testing.T) {
	reg := testRegistry(t)
	utc := New(reg, time.UTC, "")

	// 2023-11-14T22:13:20Z in milliseconds.
	cell := record.IntCell(0, 1700000000000)
	col := record.Column{Capability: record.CapTimestamp, CodecID: codec.UnixMilliseconds}

	assert.Equal(t, "2023-11-14 22:13:20", utc.Cell(cell, col))

	tokyo := utc.WithZone(time.FixedZone("JST", 9*3600))
	assert.Equal(t, "2023-11-15 07:13:20", tokyo.Cell(cell, col))
}

func TestZoneChangeNeverAltersRawOrInstant(t *testing.T) {
	reg := testRegistry(t)
	cell := record.IntCell(0, 1700000000)
	c := reg.Lookup(codec.UnixSeconds)
	require.NotNil(t, c)

	before, ok := c.Decode(cell.Int)
	require.True(t, ok)

	r := New(reg, time.FixedZone("X", -5*3600), "")
	_, ok = r.Timestamp(cell, codec.UnixSeconds)
	require.True(t, ok)

	after, ok := c.Decode(cell.Int)
	require.True(t, ok)
	assert.True(t, before.Equal(after))
	assert.Equal(t, int64(1700000000), cell.Int)
}

func TestTimestampFallsBackToRaw(t *testing.T) {
	reg := testRegistry(t)
	r := New(reg, time.UTC, "")

	// Out of every codec's range: render the stored value, never error.
	cell := record.IntCell(0, 10000000000)
	col := record.Column{Capability: record.CapTimestamp, CodecID: codec.UnixSeconds}
	assert.Equal(t, "10000000000", r.Cell(cell, col))

	col.CodecID = "no-such-codec"
	assert.Equal(t, "10000000000", r.Cell(cell, col))
}

func TestCellNull(t *testing.T) {
	r := New(testRegistry(t), time.UTC, "")
	got := r.Cell(record.NullCell(0), record.Column{Capability: record.CapTimestamp})
	assert.Equal(t, "NULL", got)
}

func TestCellImageSummary(t *testing.T) {
	r := New(testRegistry(t), time.UTC, "")
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 100)...)
	got := r.Cell(record.BlobCell(0, png), record.Column{Capability: record.CapImage})
	assert.Equal(t, "<PNG image, 108 B>", got)
}

func TestCellHexPreviewTruncates(t *testing.T) {
	r := New(testRegistry(t), time.UTC, "")
	blob := make([]byte, 40)
	got := r.Cell(record.BlobCell(0, blob), record.Column{Capability: record.CapHex})
	assert.True(t, strings.HasPrefix(got, strings.Repeat("00", 16)))
	assert.Contains(t, got, "40 B")
}

func TestCellBinaryPlistNote(t *testing.T) {
	r := New(testRegistry(t), time.UTC, "")
	blob := append([]byte("bplist00"), 0x01, 0x02)
	got := r.Cell(record.BlobCell(0, blob), record.Column{Capability: record.CapPlain})
	assert.Equal(t, "<binary plist, 10 B>", got)
}

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON([]byte(`{"a":1,"b":[2,3]}`))
	assert.Contains(t, got, "\n")
	assert.Contains(t, got, `"a"`)

	// Unparseable input comes back unchanged.
	assert.Equal(t, "not json", PrettyJSON([]byte("not json")))
}

func TestHexDump(t *testing.T) {
	data := []byte("Hello, World! This line exceeds sixteen bytes.\x00\x01")
	dump := HexDump(data)

	lines := strings.Split(strings.TrimRight(dump, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], "00000000  48 65 6C 6C 6F"))
	assert.True(t, strings.HasPrefix(lines[1], "00000010  "))
	assert.Contains(t, lines[0], "|Hello, World! Th|")
	// Non-printable bytes show as dots in the gutter.
	assert.Contains(t, lines[2], "..|")
}

func TestHexDumpEmpty(t *testing.T) {
	assert.Equal(t, "", HexDump(nil))
}
