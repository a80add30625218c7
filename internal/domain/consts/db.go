package consts

// Tables
const (
	DBBatches   = "batches"
	DBDownloads = "downloads"
)

// Batches
const (
	QBatchID         = "id"
	QBatchTotal      = "total"
	QBatchSucceeded  = "succeeded"
	QBatchFailed     = "failed"
	QBatchSkipped    = "skipped"
	QBatchStartedAt  = "started_at"
	QBatchFinishedAt = "finished_at"
)

// Downloads
const (
	QDLID        = "id"
	QDLItemID    = "item_id"
	QDLBatchID   = "batch_id"
	QDLURL       = "url"
	QDLFilename  = "filename"
	QDLStatus    = "status"
	QDLPct       = "pct"
	QDLBytes     = "bytes_written"
	QDLDuration  = "duration_ms"
	QDLErrReason = "error_reason"
	QDLCreatedAt = "created_at"
	QDLUpdatedAt = "updated_at"
)
