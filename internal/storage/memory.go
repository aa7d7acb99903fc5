package storage

import (
	"context"
	"sync"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// InMemoryRecordStore holds record collections keyed by record type. It is
// the fallback source when no database is configured and the backing store
// for ingested foot-traffic observations. Snapshots are copies, so a query
// keeps working on consistent data while new records arrive.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[models.RecordType][]models.Record
}

// NewInMemoryRecordStore creates an empty in-memory store.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		records: make(map[models.RecordType][]models.Record),
	}
}

// Snapshot returns a copy of the records for the given type.
func (s *InMemoryRecordStore) Snapshot(_ context.Context, recordType models.RecordType) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[recordType]
	out := make([]models.Record, len(stored))
	copy(out, stored)
	return out, nil
}

// Append adds one record to its type's collection.
func (s *InMemoryRecordStore) Append(_ context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Type] = append(s.records[record.Type], record)
	return nil
}

// Replace swaps in a full collection for one record type.
func (s *InMemoryRecordStore) Replace(recordType models.RecordType, records []models.Record) {
	stored := make([]models.Record, len(records))
	copy(stored, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordType] = stored
}

// Len returns the number of records held for the given type.
func (s *InMemoryRecordStore) Len(recordType models.RecordType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[recordType])
}
