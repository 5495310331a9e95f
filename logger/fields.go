package logger

// Standard field names for consistent structured logging across traceview.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Capture and tables
	FieldCapture = "capture"
	FieldTable   = "table"
	FieldColumn  = "column"
	FieldRowID   = "row_id"

	// Acquisition
	FieldOffset    = "offset"
	FieldLimit     = "limit"
	FieldBatchSize = "batch_size"
	FieldRowCount  = "row_count"
	FieldSortKey   = "sort_key"

	// Inference
	FieldCodec      = "codec"
	FieldCapability = "capability"
	FieldSampleSize = "sample_size"
	FieldLiveness   = "liveness"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files
	FieldFile = "file"
	FieldWAL  = "wal"
)
