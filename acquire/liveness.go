package acquire

import (
	"github.com/traceviewhq/traceview/record"
	"github.com/traceviewhq/traceview/store"
)

// Detect classifies a row's liveness from storage metadata alone.
// A set tombstone or a WAL-only placement marks the row residual; rows
// with metadata and neither marker are live; rows with no metadata at
// all are unknown. Cell contents never influence the verdict.
func Detect(meta store.RowMeta) record.Liveness {
	if (meta.HasTombstone && meta.Tombstoned) || (meta.HasWALInfo && meta.WALOnly) {
		return record.LivenessResidual
	}
	if meta.HasTombstone || meta.HasWALInfo {
		return record.LivenessLive
	}
	return record.LivenessUnknown
}
