package display

import (
	gojson "github.com/goccy/go-json"
)

// MarshalJSON pretty-prints v for the terminal.
func MarshalJSON(v interface{}) ([]byte, error) {
	return gojson.MarshalIndent(v, "", "  ")
}
