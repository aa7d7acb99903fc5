package storage

import (
	"strings"
	"testing"

	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollupQueryCastsCounts(t *testing.T) {
	for _, recordType := range []models.RecordType{
		models.RecordTypeCampaign,
		models.RecordTypePlacement,
		models.RecordTypeGeoDevice,
	} {
		query := rollupQuery(recordType)
		require.NotEmpty(t, query, string(recordType))

		// countIf yields UInt64; each count must be cast so it scans into
		// the int64 metric fields.
		counts := strings.Count(query, "countIf")
		assert.Equal(t, counts, strings.Count(query, "toInt64(countIf"), string(recordType))
		assert.Equal(t, 5, counts, string(recordType))

		assert.Contains(t, query, "GROUP BY date", string(recordType))
		assert.Contains(t, query, "ORDER BY date ASC", string(recordType))
	}
}

func TestRollupQueryGroupsByTypeIdentity(t *testing.T) {
	assert.Contains(t, rollupQuery(models.RecordTypeCampaign), "advertiser, campaign, channel")
	assert.Contains(t, rollupQuery(models.RecordTypePlacement), "placement_id, site_domain, inventory_type")
	assert.Contains(t, rollupQuery(models.RecordTypeGeoDevice), "geo_country, geo_city, device_type, device_os")
}

func TestRollupQueryFootTrafficNotServed(t *testing.T) {
	assert.Empty(t, rollupQuery(models.RecordTypeFootTraffic))
}
