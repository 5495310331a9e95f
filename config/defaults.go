package config

import (
	"github.com/spf13/viper"
)

// Default forensic window bounds. Values decoding outside this window are
// rejected as timestamp candidates unless the window is reconfigured.
const (
	DefaultWindowMin = "2000-01-01T00:00:00Z"
	DefaultWindowMax = "2100-01-01T00:00:00Z"
)

// DefaultTimeFormat is the rendered form of decoded instants.
const DefaultTimeFormat = "2006-01-02 15:04:05"

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "")
	// Z_OPT is the Core Data optimistic-locking column LINE captures abuse
	// as a tombstone marker.
	v.SetDefault("database.tombstone_columns", []string{"Z_OPT", "DELETED", "IS_DELETED"})

	// Forensic window defaults
	v.SetDefault("window.min", DefaultWindowMin)
	v.SetDefault("window.max", DefaultWindowMax)

	// Display defaults
	v.SetDefault("display.zone", "UTC")
	v.SetDefault("display.time_format", DefaultTimeFormat)

	// Acquisition defaults
	v.SetDefault("acquire.batch_size", 256)

	// Inference defaults
	v.SetDefault("infer.sample_rows", 1024)
	v.SetDefault("infer.extra_hints", []string{})

	// Search defaults
	v.SetDefault("search.default_mode", "contains")
	v.SetDefault("search.case_sensitive", false)
}
