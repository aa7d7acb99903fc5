package storage

import (
	"context"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// RecordSource provides an immutable snapshot of the records for one record
// type. A snapshot is acquired once per query; the engine never goes back to
// the source mid-pipeline. Implementations may hit the network, so failures
// are expected and surfaced as errors, not empty sets.
type RecordSource interface {
	Snapshot(ctx context.Context, recordType models.RecordType) ([]models.Record, error)
}

// RecordSink accepts newly observed records. Only the ingest path writes;
// report queries are read-only.
type RecordSink interface {
	Append(ctx context.Context, record models.Record) error
}
