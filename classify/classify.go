// Package classify implements the raw value classifier: given one cell
// and its storage class, it produces a capability tag telling the rest
// of the pipeline how the value can be presented.
//
// Classification never fails. Forensic data must always be displayable,
// so unrecognized content degrades to plain (for text/numbers) or hex
// (for blobs) instead of raising an error.
package classify

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	"github.com/traceviewhq/traceview/codec"
	"github.com/traceviewhq/traceview/record"
)

// imageSignature pairs a magic-number prefix with its format name.
type imageSignature struct {
	prefix []byte
	format string
}

// Magic numbers of the image formats chat captures embed in blobs.
var imageSignatures = []imageSignature{
	{[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "PNG"},
	{[]byte{0xFF, 0xD8, 0xFF}, "JPEG"},
	{[]byte("GIF89a"), "GIF"},
	{[]byte("GIF87a"), "GIF"},
	{[]byte("BM"), "BMP"},
	{[]byte{0x00, 0x00, 0x01, 0x00}, "ICO"},
	{[]byte("II*\x00"), "TIFF"},
	{[]byte("MM\x00*"), "TIFF"},
	{[]byte("8BPS"), "PSD"},
}

// webp is RIFF....WEBP: four don't-care length bytes sit between the
// two markers, so it cannot live in the plain prefix table.
var (
	riffPrefix = []byte("RIFF")
	webpMarker = []byte("WEBP")
)

// bplistMagic opens Apple binary property lists, common in iOS chat
// captures. They are not parsed, only tagged for the detail view.
var bplistMagic = []byte("bplist")

// Classifier tags cells with capabilities. It is stateless apart from
// the read-only codec registry and safe for concurrent use.
type Classifier struct {
	registry *codec.Registry
}

// New returns a classifier using the given codec registry for
// timestamp eligibility checks.
func New(registry *codec.Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify is a pure function of the single cell: no side effects, no
// errors. Numeric cells inside any codec's valid range are tagged
// eligible for timestamp decoding; the final column-level decision
// belongs to the inference engine.
func (cl *Classifier) Classify(cell record.Cell) record.Capability {
	switch cell.Class {
	case record.ClassNull:
		return record.CapPlain

	case record.ClassBlob:
		if _, ok := ImageFormat(cell.Blob); ok {
			return record.CapImage
		}
		if isJSONDocument(cell.Blob) {
			return record.CapJSON
		}
		// Hex is always renderable: the fallback for any blob.
		return record.CapHex

	case record.ClassText:
		if isJSONDocument([]byte(cell.Text)) {
			return record.CapJSON
		}
		return record.CapPlain

	case record.ClassInteger:
		for _, c := range cl.registry.Codecs() {
			if c.InRange(cell.Int) {
				return record.CapTimestamp
			}
		}
		return record.CapPlain

	case record.ClassReal:
		for _, c := range cl.registry.Codecs() {
			if c.InRangeFloat(cell.Real) {
				return record.CapTimestamp
			}
		}
		return record.CapPlain

	default:
		return record.CapPlain
	}
}

// ImageFormat sniffs the blob's leading bytes against the known image
// magic numbers, returning the format name on a match.
func ImageFormat(blob []byte) (string, bool) {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(blob, sig.prefix) {
			return sig.format, true
		}
	}
	if len(blob) >= 12 && bytes.HasPrefix(blob, riffPrefix) && bytes.Equal(blob[8:12], webpMarker) {
		return "WebP", true
	}
	return "", false
}

// IsBinaryPlist reports whether the blob opens an Apple binary plist.
func IsBinaryPlist(blob []byte) bool {
	return bytes.HasPrefix(blob, bplistMagic)
}

// isJSONDocument reports whether data is a complete, valid JSON document
// (object or array). Bare scalars are deliberately excluded: a text cell
// holding "42" is plain text, not JSON.
func isJSONDocument(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return gojson.Valid(data)
}
