package codec

import (
	"time"

	"github.com/traceviewhq/traceview/errors"
)

// Registry is the fixed, ordered catalog of codecs. Order defines
// tie-break priority: when several codecs plausibly decode an entire
// column, the earliest wins. The registry is immutable after
// construction and safe to share across pipelines.
type Registry struct {
	codecs []*Codec
	byID   map[string]*Codec
}

// NewRegistry builds the catalog with valid ranges derived from the
// forensic window [min, max]. Narrower, more specific units rank before
// wider ones; non-Unix epochs rank last.
func NewRegistry(min, max time.Time) (*Registry, error) {
	if !max.After(min) {
		return nil, errors.Newf("forensic window max %s must be after min %s", max, min)
	}

	specs := []Codec{
		{ID: UnixMilliseconds, Epoch: time.Unix(0, 0).UTC(), epochUnix: 0, TicksPerSecond: 1e3, Signed: true},
		{ID: UnixSeconds, Epoch: time.Unix(0, 0).UTC(), epochUnix: 0, TicksPerSecond: 1, Signed: true},
		{ID: UnixMicroseconds, Epoch: time.Unix(0, 0).UTC(), epochUnix: 0, TicksPerSecond: 1e6, Signed: true},
		{ID: WebKit, Epoch: time.Unix(webkitEpochUnix, 0).UTC(), epochUnix: webkitEpochUnix, TicksPerSecond: 1e7, Signed: false},
		{ID: Cocoa, Epoch: time.Unix(cocoaEpochUnix, 0).UTC(), epochUnix: cocoaEpochUnix, TicksPerSecond: 1, Signed: true, Fractional: true},
	}

	r := &Registry{byID: make(map[string]*Codec, len(specs))}
	for i := range specs {
		c := specs[i]
		c.MinRaw = c.Encode(min)
		c.MaxRaw = c.Encode(max)
		r.codecs = append(r.codecs, &c)
		r.byID[c.ID] = &c
	}
	return r, nil
}

// Codecs returns the catalog in priority order. Callers must not modify
// the returned slice.
func (r *Registry) Codecs() []*Codec {
	return r.codecs
}

// Lookup returns the codec with the given ID, or nil.
func (r *Registry) Lookup(id string) *Codec {
	return r.byID[id]
}

// Priority returns the tie-break rank of a codec ID; lower is stronger.
// Unknown IDs rank after every known codec.
func (r *Registry) Priority(id string) int {
	for i, c := range r.codecs {
		if c.ID == id {
			return i
		}
	}
	return len(r.codecs)
}
