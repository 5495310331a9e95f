// Package record defines the data model shared by the traceview
// pipeline: cells, rows, columns, batches, and liveness tags.
//
// Cells are a closed tagged variant over SQLite's storage classes.
// Whatever a cell turns out to be, its raw stored representation is
// never mutated or discarded: lossless round-trip back to the original
// value is a chain-of-custody requirement, not an optimization.
package record

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// StorageClass is the declared storage class of a stored value.
type StorageClass int

const (
	ClassNull StorageClass = iota
	ClassInteger
	ClassReal
	ClassText
	ClassBlob
)

// String returns the SQLite name of the storage class.
func (sc StorageClass) String() string {
	switch sc {
	case ClassNull:
		return "null"
	case ClassInteger:
		return "integer"
	case ClassReal:
		return "real"
	case ClassText:
		return "text"
	case ClassBlob:
		return "blob"
	default:
		return fmt.Sprintf("storageclass(%d)", int(sc))
	}
}

// Capability is what a value (or a whole column) has been determined to
// be. A column never straddles two capabilities; rendering must stay
// deterministic.
type Capability int

const (
	CapPlain Capability = iota
	CapTimestamp
	CapHex
	CapJSON
	CapImage
)

func (c Capability) String() string {
	switch c {
	case CapPlain:
		return "plain"
	case CapTimestamp:
		return "timestamp"
	case CapHex:
		return "hex"
	case CapJSON:
		return "json"
	case CapImage:
		return "image"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Liveness classifies whether a row is an active record, a residual
// artifact still physically present (tombstoned, or WAL-only), or
// undeterminable. Decided once at acquisition time; immutable after.
type Liveness int

const (
	LivenessUnknown Liveness = iota
	LivenessLive
	LivenessResidual
)

func (l Liveness) String() string {
	switch l {
	case LivenessLive:
		return "live"
	case LivenessResidual:
		return "residual"
	default:
		return "unknown"
	}
}

// Cell is one stored value. Immutable once read from the store. Exactly
// one of the value fields is meaningful, selected by Class.
type Cell struct {
	ColumnIdx int
	Class     StorageClass

	Int  int64
	Real float64
	Text string
	Blob []byte
}

// NullCell returns a cell of the null storage class.
func NullCell(col int) Cell { return Cell{ColumnIdx: col, Class: ClassNull} }

// IntCell returns an integer cell.
func IntCell(col int, v int64) Cell {
	return Cell{ColumnIdx: col, Class: ClassInteger, Int: v}
}

// RealCell returns a real cell.
func RealCell(col int, v float64) Cell {
	return Cell{ColumnIdx: col, Class: ClassReal, Real: v}
}

// TextCell returns a text cell.
func TextCell(col int, v string) Cell {
	return Cell{ColumnIdx: col, Class: ClassText, Text: v}
}

// BlobCell returns a blob cell.
func BlobCell(col int, v []byte) Cell {
	return Cell{ColumnIdx: col, Class: ClassBlob, Blob: v}
}

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool { return c.Class == ClassNull }

// RawString renders the original stored representation. This is the
// forensic ground truth shown next to any decoded form.
func (c Cell) RawString() string {
	switch c.Class {
	case ClassNull:
		return "NULL"
	case ClassInteger:
		return strconv.FormatInt(c.Int, 10)
	case ClassReal:
		return strconv.FormatFloat(c.Real, 'g', -1, 64)
	case ClassText:
		return c.Text
	case ClassBlob:
		return hex.EncodeToString(c.Blob)
	default:
		return ""
	}
}

// Column describes one column of a table under inspection.
type Column struct {
	Name         string
	DeclaredType string
	Capability   Capability
	// CodecID is set only when Capability is CapTimestamp.
	CodecID string
}

// Row is one acquired record.
type Row struct {
	RowID    int64
	Cells    []Cell
	Liveness Liveness
}

// Batch is a bounded, ordered window of rows handed from acquisition to
// inference and presentation. The acquirer builds a fresh Batch per call
// and never retains it after handoff.
type Batch struct {
	Table   string
	Columns []Column
	Rows    []Row
	// Offset is the position of Rows[0] in the acquisition order.
	Offset int64
}
