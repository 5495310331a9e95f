package config

import (
	"time"

	"github.com/traceviewhq/traceview/errors"
)

var searchModes = map[string]bool{
	"contains": true,
	"prefix":   true,
	"suffix":   true,
	"exact":    true,
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	// Database path is optional - the CLI accepts it as an argument too.

	min, err := time.Parse(time.RFC3339, c.Window.Min)
	if err != nil {
		return errors.Wrapf(err, "window.min %q is not RFC 3339", c.Window.Min)
	}
	max, err := time.Parse(time.RFC3339, c.Window.Max)
	if err != nil {
		return errors.Wrapf(err, "window.max %q is not RFC 3339", c.Window.Max)
	}
	if !max.After(min) {
		return errors.Newf("window.max %s must be after window.min %s", c.Window.Max, c.Window.Min)
	}

	if c.Acquire.BatchSize <= 0 {
		return errors.Newf("acquire.batch_size must be > 0, got %d", c.Acquire.BatchSize)
	}

	if c.Infer.SampleRows <= 0 {
		return errors.Newf("infer.sample_rows must be > 0, got %d", c.Infer.SampleRows)
	}

	if !searchModes[c.Search.DefaultMode] {
		return errors.Newf("search.default_mode %q must be one of contains, prefix, suffix, exact", c.Search.DefaultMode)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// WindowBounds returns the parsed forensic window. Validate must have
// succeeded first; parse errors here are assertion failures.
func (c *Config) WindowBounds() (time.Time, time.Time) {
	min, _ := time.Parse(time.RFC3339, c.Window.Min)
	max, _ := time.Parse(time.RFC3339, c.Window.Max)
	return min, max
}

// Location resolves display.zone into a *time.Location. Accepts "UTC",
// IANA zone names, and fixed offsets of the form "+09:00" / "-05:30".
func (c *Config) Location() (*time.Location, error) {
	zone := c.Display.Zone
	if zone == "" || zone == "UTC" {
		return time.UTC, nil
	}

	if len(zone) == 6 && (zone[0] == '+' || zone[0] == '-') {
		t, err := time.Parse("-07:00", zone)
		if err != nil {
			return nil, errors.Wrapf(err, "display.zone %q is not a valid fixed offset", zone)
		}
		_, offset := t.Zone()
		return time.FixedZone("UTC"+zone, offset), nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, errors.Wrapf(err, "display.zone %q is not a known zone", zone)
	}
	return loc, nil
}
