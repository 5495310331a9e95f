// Package config provides traceview session configuration.
//
// Configuration is loaded from traceview.toml (current directory or
// walking up), the TRACEVIEW_ environment prefix, and built-in defaults,
// in the usual precedence order. The configuration is per-session state:
// it is passed explicitly into the components that need it, never read
// through process globals by the core packages, so two open captures
// cannot bleed settings into each other.
package config

// Config represents the traceview configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Window   WindowConfig   `mapstructure:"window"`
	Display  DisplayConfig  `mapstructure:"display"`
	Acquire  AcquireConfig  `mapstructure:"acquire"`
	Infer    InferConfig    `mapstructure:"infer"`
	Search   SearchConfig   `mapstructure:"search"`
}

// DatabaseConfig locates the capture under inspection.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// TombstoneColumns names columns whose non-zero value marks a row as
	// logically deleted. Matched case-insensitively per table.
	TombstoneColumns []string `mapstructure:"tombstone_columns"`
}

// WindowConfig bounds the forensic window: a decoded instant outside
// [Min, Max] disqualifies the codec for that value.
type WindowConfig struct {
	Min string `mapstructure:"min"` // RFC 3339 date, default 2000-01-01
	Max string `mapstructure:"max"` // RFC 3339 date, default 2100-01-01
}

// DisplayConfig controls render-time presentation only. Changing it
// never re-decodes stored instants.
type DisplayConfig struct {
	// Zone is an IANA zone name ("Asia/Tokyo"), a fixed offset ("+09:00"),
	// or "UTC".
	Zone string `mapstructure:"zone"`
	// TimeFormat is the Go reference layout used for rendered instants.
	TimeFormat string `mapstructure:"time_format"`
}

// AcquireConfig bounds batched record acquisition.
type AcquireConfig struct {
	BatchSize int `mapstructure:"batch_size"` // rows per batch (default: 256)
}

// InferConfig controls timestamp inference sampling.
type InferConfig struct {
	SampleRows int `mapstructure:"sample_rows"` // rows sampled for column inference (default: 1024)
	// ExtraHints extends the built-in timestamp column keyword list.
	ExtraHints []string `mapstructure:"extra_hints"`
}

// SearchConfig sets search defaults.
type SearchConfig struct {
	DefaultMode   string `mapstructure:"default_mode"` // contains|prefix|suffix|exact
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}
