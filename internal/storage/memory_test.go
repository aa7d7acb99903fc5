package storage

import (
	"context"
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitRecord(city string) models.Record {
	r := models.Record{
		Type: models.RecordTypeFootTraffic,
		Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		City: city,
	}
	r.Metrics.VerifiedVisits = 10
	return r
}

func TestInMemoryStoreAppendAndSnapshot(t *testing.T) {
	store := NewInMemoryRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, visitRecord("Berlin")))
	require.NoError(t, store.Append(ctx, visitRecord("Toronto")))

	records, err := store.Snapshot(ctx, models.RecordTypeFootTraffic)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Other types are unaffected.
	other, err := store.Snapshot(ctx, models.RecordTypeCampaign)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInMemoryStoreSnapshotIsACopy(t *testing.T) {
	store := NewInMemoryRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, visitRecord("Berlin")))

	snapshot, err := store.Snapshot(ctx, models.RecordTypeFootTraffic)
	require.NoError(t, err)

	// Appending after the snapshot must not grow the snapshot.
	require.NoError(t, store.Append(ctx, visitRecord("London")))
	assert.Len(t, snapshot, 1)

	// Mutating the snapshot must not leak back into the store.
	snapshot[0].City = "changed"
	fresh, err := store.Snapshot(ctx, models.RecordTypeFootTraffic)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", fresh[0].City)
}

func TestInMemoryStoreReplace(t *testing.T) {
	store := NewInMemoryRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, visitRecord("Berlin")))

	store.Replace(models.RecordTypeFootTraffic, []models.Record{
		visitRecord("Chicago"),
		visitRecord("Vancouver"),
	})

	records, err := store.Snapshot(ctx, models.RecordTypeFootTraffic)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, store.Len(models.RecordTypeFootTraffic))
}
