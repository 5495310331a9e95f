// Package render turns decoded cells into display strings: timestamps
// in the session's display zone, JSON pretty views, hex dumps with an
// ASCII gutter. Rendering never mutates the underlying cell; the raw
// stored representation stays available alongside every display string.
package render

import (
	"fmt"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/traceviewhq/traceview/classify"
	"github.com/traceviewhq/traceview/codec"
	"github.com/traceviewhq/traceview/record"
)

// Renderer holds per-session display settings. Zone and format are
// explicit session state, never process globals, so two open tables
// can render under different zones without bleed.
type Renderer struct {
	registry *codec.Registry
	loc      *time.Location
	format   string
}

// New creates a renderer displaying timestamps in loc using the given
// time layout.
func New(registry *codec.Registry, loc *time.Location, format string) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	if format == "" {
		format = "2006-01-02 15:04:05"
	}
	return &Renderer{registry: registry, loc: loc, format: format}
}

// WithZone returns a copy of the renderer displaying in loc. The raw
// values and decoded UTC instants are unaffected; only the rendered
// strings change.
func (r *Renderer) WithZone(loc *time.Location) *Renderer {
	out := *r
	out.loc = loc
	return &out
}

// Cell renders one cell under its column's inferred capability. The
// result is always printable; cells that fail to decode fall back to
// their raw representation.
func (r *Renderer) Cell(cell record.Cell, col record.Column) string {
	if cell.IsNull() {
		return "NULL"
	}
	switch col.Capability {
	case record.CapTimestamp:
		if s, ok := r.Timestamp(cell, col.CodecID); ok {
			return s
		}
		return cell.RawString()
	case record.CapJSON:
		return r.compactJSON(cell)
	case record.CapHex:
		return hexPreview(cell.Blob)
	case record.CapImage:
		return imageSummary(cell.Blob)
	default:
		return r.plain(cell)
	}
}

// Timestamp decodes cell under codecID and formats it in the display
// zone. Returns false when the cell is not numeric, the codec is
// unknown, or the value falls outside the codec's valid range.
func (r *Renderer) Timestamp(cell record.Cell, codecID string) (string, bool) {
	c := r.registry.Lookup(codecID)
	if c == nil {
		return "", false
	}
	var (
		t       time.Time
		decoded bool
	)
	switch cell.Class {
	case record.ClassInteger:
		t, decoded = c.Decode(cell.Int)
	case record.ClassReal:
		t, decoded = c.DecodeFloat(cell.Real)
	default:
		return "", false
	}
	if !decoded {
		return "", false
	}
	return t.In(r.loc).Format(r.format), true
}

// PrettyJSON re-indents a JSON document for the detail view. Input
// that fails to parse is returned unchanged.
func PrettyJSON(data []byte) string {
	var v interface{}
	if err := gojson.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(out)
}

func (r *Renderer) compactJSON(cell record.Cell) string {
	switch cell.Class {
	case record.ClassText:
		return cell.Text
	case record.ClassBlob:
		return string(cell.Blob)
	default:
		return cell.RawString()
	}
}

func (r *Renderer) plain(cell record.Cell) string {
	if cell.Class == record.ClassText && classify.IsBinaryPlist([]byte(cell.Text)) {
		return "<binary plist, " + byteCount(len(cell.Text)) + ">"
	}
	if cell.Class == record.ClassBlob {
		if classify.IsBinaryPlist(cell.Blob) {
			return "<binary plist, " + byteCount(len(cell.Blob)) + ">"
		}
		return hexPreview(cell.Blob)
	}
	return cell.RawString()
}

// hexPreview renders a short inline hex string for table cells; the
// full dump lives in the detail view.
func hexPreview(data []byte) string {
	const max = 16
	var b strings.Builder
	n := len(data)
	if n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%02X", data[i])
	}
	if len(data) > max {
		fmt.Fprintf(&b, "… (%s)", byteCount(len(data)))
	}
	return b.String()
}

func imageSummary(data []byte) string {
	format, ok := classify.ImageFormat(data)
	if !ok {
		return hexPreview(data)
	}
	return "<" + format + " image, " + byteCount(len(data)) + ">"
}

func byteCount(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
