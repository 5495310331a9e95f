package infer

import (
	"strings"

	"github.com/traceviewhq/traceview/codec"
)

// timestampKeywords are the column-name substrings associated with
// timestamp semantics in chat-database schemas. Matching is
// case-insensitive. A hint never overrides the all-or-nothing candidacy
// filter; it only breaks residual ties among surviving candidates.
var timestampKeywords = []string{
	// Generic
	"TIMESTAMP",
	"TIME",
	"DATE",
	"DATETIME",
	// Creation / modification
	"CREATED",
	"MODIFIED",
	"UPDATED",
	"LAST_UPDATED",
	"LAST_MODIFIED",
	"CREATE_TIME",
	"UPDATE_TIME",
	"MOD_TIME",
	// Core Data prefixed forms
	"Z_TIMESTAMP",
	"ZLASTUPDATE",
	"ZLASTMODIFIED",
	"ZCREATEDAT",
	"ZUPDATEDAT",
	// Messaging events
	"POSTED_AT",
	"SENT_AT",
	"RECEIVED_AT",
	"DELIVERED_AT",
	"READ_AT",
	"ACCESSED_AT",
	"LOGGED_AT",
	// Ranges and deadlines
	"START",
	"END",
	"EXPIRE",
	"DEADLINE",
	"BIRTH",
}

// unitKeywords map a column-name substring to the codec it suggests.
// Checked in order; first match wins.
var unitKeywords = []struct {
	substr  string
	codecID string
}{
	{"WEBKIT", codec.WebKit},
	{"FILETIME", codec.WebKit},
	{"COCOA", codec.Cocoa},
	{"MAC_TIME", codec.Cocoa},
	{"MICRO", codec.UnixMicroseconds},
	{"USEC", codec.UnixMicroseconds},
	{"MILLI", codec.UnixMilliseconds},
	{"_MS", codec.UnixMilliseconds},
	{"_SEC", codec.UnixSeconds},
	{"EPOCH", codec.UnixSeconds},
}

// HasTimestampHint reports whether the column name carries a recognized
// timestamp keyword, from the built-in list or the extra session hints.
func HasTimestampHint(columnName string, extra []string) bool {
	upper := strings.ToUpper(columnName)
	for _, kw := range timestampKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	for _, kw := range extra {
		if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// UnitHint returns the codec a column name suggests, when the name
// carries a unit-bearing keyword.
func UnitHint(columnName string) (string, bool) {
	upper := strings.ToUpper(columnName)
	for _, uk := range unitKeywords {
		if strings.Contains(upper, uk.substr) {
			return uk.codecID, true
		}
	}
	return "", false
}
