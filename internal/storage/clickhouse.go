package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// ClickHouseRecordSource rolls raw impression/click/conversion event rows up
// into daily records at query time. It serves the record types that originate
// from the ad-event stream; foot-traffic observations come in through the
// ingest path instead and are not answered here.
type ClickHouseRecordSource struct {
	conn driver.Conn
}

func NewClickHouseRecordSource(conn driver.Conn) *ClickHouseRecordSource {
	return &ClickHouseRecordSource{conn: conn}
}

// rollupQuery returns the GROUP BY rollup for one record type, or the empty
// string for types that do not originate from the event stream. countIf
// yields UInt64, which the driver will not scan into an int64 field, so every
// count is cast to Int64 in the query itself.
func rollupQuery(recordType models.RecordType) string {
	var dims string
	switch recordType {
	case models.RecordTypeCampaign:
		dims = "advertiser, campaign, channel"
	case models.RecordTypePlacement:
		dims = "placement_id, site_domain, inventory_type"
	case models.RecordTypeGeoDevice:
		dims = "geo_country, geo_city, device_type, device_os"
	default:
		return ""
	}
	return fmt.Sprintf(`
		SELECT toDate(timestamp) AS date,
			   %s,
			   toInt64(countIf(event_type = 'impression')) AS impressions,
			   toInt64(countIf(event_type = 'click')) AS clicks,
			   toInt64(countIf(event_type = 'conversion')) AS conversions,
			   sum(cost) AS spend,
			   sumIf(revenue, event_type = 'conversion') AS revenue,
			   toInt64(countIf(event_type = 'video_start')) AS video_starts,
			   toInt64(countIf(event_type = 'video_complete')) AS video_completions,
			   avgIf(viewable, event_type = 'impression') AS viewability_rate
		FROM events
		GROUP BY date, %s
		ORDER BY date ASC`, dims, dims)
}

// Snapshot aggregates the events table into daily records grouped by the
// identity columns of the requested type. Ratios are left to the models
// recompute so the rollup only ships additive columns.
func (s *ClickHouseRecordSource) Snapshot(ctx context.Context, recordType models.RecordType) ([]models.Record, error) {
	query := rollupQuery(recordType)
	if query == "" {
		return []models.Record{}, nil
	}

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up %s records: %w", recordType, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		r := models.Record{Type: recordType}
		var date time.Time

		dims := make([]*string, 0, 4)
		switch recordType {
		case models.RecordTypeCampaign:
			dims = append(dims, &r.Advertiser, &r.Campaign, &r.Channel)
		case models.RecordTypePlacement:
			dims = append(dims, &r.PlacementID, &r.SiteDomain, &r.InventoryType)
		case models.RecordTypeGeoDevice:
			dims = append(dims, &r.Country, &r.City, &r.DeviceType, &r.DeviceOS)
		}

		dest := []interface{}{&date}
		for _, d := range dims {
			dest = append(dest, d)
		}
		dest = append(dest,
			&r.Metrics.Impressions, &r.Metrics.Clicks, &r.Metrics.Conversions,
			&r.Metrics.Spend, &r.Metrics.Revenue,
			&r.Metrics.VideoStarts, &r.Metrics.VideoCompletions,
			&r.Metrics.ViewabilityRate,
		)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan rollup row: %w", err)
		}

		r.Date = date
		if r.Metrics.VideoStarts > 0 {
			r.Metrics.CompletionRate = float64(r.Metrics.VideoCompletions) / float64(r.Metrics.VideoStarts)
		}
		r.Metrics.RecomputeRatios()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rollup rows: %w", err)
	}

	return records, nil
}
