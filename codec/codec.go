// Package codec implements the timestamp codec registry: the closed
// catalog of raw-number-to-instant encodings found in mobile-chat
// database captures.
//
// A codec is pure arithmetic: instant = epoch + raw / ticks-per-second.
// Each codec carries a valid raw range derived from the session's
// forensic window, so a small integer can never "accidentally" decode to
// a plausible date under the wrong unit. Decoding is exact for integer
// raw values (WebKit tick counts exceed float64's exact-integer range,
// so the arithmetic stays in int64 throughout) and exact to float64
// precision for fractional values.
package codec

import (
	"time"
)

// Codec identifiers. The registry stores codecs in priority order; these
// constants name them.
const (
	UnixSeconds      = "unix-s"
	UnixMilliseconds = "unix-ms"
	UnixMicroseconds = "unix-us"
	WebKit           = "webkit" // 100ns ticks since 1601, also covers Windows FILETIME
	Cocoa            = "cocoa"  // seconds since 2001, fractional allowed
)

// Epoch offsets in Unix seconds.
const (
	webkitEpochUnix = -11644473600 // 1601-01-01T00:00:00Z
	cocoaEpochUnix  = 978307200    // 2001-01-01T00:00:00Z
)

// Codec maps raw numeric values to absolute instants and back.
type Codec struct {
	ID     string
	Epoch  time.Time
	Signed bool
	// TicksPerSecond expresses the unit: 1 (seconds), 1e3 (ms), 1e6 (µs),
	// 1e7 (100ns ticks). Always divides 1e9 evenly.
	TicksPerSecond int64
	// Fractional marks codecs whose raw values may carry a fraction
	// (REAL storage class), e.g. Cocoa.
	Fractional bool

	// Valid raw range, derived from the forensic window at registry
	// construction. A raw value outside [MinRaw, MaxRaw] does not decode.
	MinRaw int64
	MaxRaw int64

	epochUnix int64 // Epoch in Unix seconds, cached for decode arithmetic
}

// nsPerTick returns the nanoseconds represented by one tick.
func (c *Codec) nsPerTick() int64 {
	return int64(time.Second) / c.TicksPerSecond
}

// InRange reports whether raw falls inside the codec's valid range.
func (c *Codec) InRange(raw int64) bool {
	return raw >= c.MinRaw && raw <= c.MaxRaw
}

// InRangeFloat reports whether a fractional raw value falls inside the
// codec's valid range. Non-fractional codecs reject values with a
// fractional part: a REAL 1700000000.5 is not a millisecond count.
func (c *Codec) InRangeFloat(raw float64) bool {
	if raw != float64(int64(raw)) && !c.Fractional {
		return false
	}
	return raw >= float64(c.MinRaw) && raw <= float64(c.MaxRaw)
}

// Decode converts a raw integer value to its instant in UTC. The boolean
// is false when raw falls outside the valid range, in which case this
// codec does not apply to the value.
func (c *Codec) Decode(raw int64) (time.Time, bool) {
	if !c.InRange(raw) {
		return time.Time{}, false
	}
	// Split into whole seconds and sub-second ticks before converting to
	// nanoseconds; raw * nsPerTick would overflow int64 for WebKit values.
	secs := raw / c.TicksPerSecond
	frac := raw % c.TicksPerSecond
	if frac < 0 {
		secs--
		frac += c.TicksPerSecond
	}
	return time.Unix(c.epochUnix+secs, frac*c.nsPerTick()).UTC(), true
}

// DecodeFloat converts a fractional raw value to its instant in UTC.
func (c *Codec) DecodeFloat(raw float64) (time.Time, bool) {
	if !c.InRangeFloat(raw) {
		return time.Time{}, false
	}
	whole := int64(raw)
	if t, ok := c.Decode(whole); ok {
		fracNanos := (raw - float64(whole)) * float64(c.nsPerTick())
		return t.Add(time.Duration(fracNanos)).UTC(), true
	}
	return time.Time{}, false
}

// Encode converts an instant back to the codec's raw integer
// representation. Encode is the exact inverse of Decode for any instant
// representable at the codec's precision.
func (c *Codec) Encode(t time.Time) int64 {
	secs := t.Unix() - c.epochUnix
	return secs*c.TicksPerSecond + int64(t.Nanosecond())/c.nsPerTick()
}

// EncodeFloat converts an instant to a fractional raw value.
func (c *Codec) EncodeFloat(t time.Time) float64 {
	secs := t.Unix() - c.epochUnix
	return float64(secs)*float64(c.TicksPerSecond) +
		float64(t.Nanosecond())/float64(c.nsPerTick())
}
