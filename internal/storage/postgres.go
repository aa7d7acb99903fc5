package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// PostgresRecordSource loads daily performance records from the
// daily_records table.
type PostgresRecordSource struct {
	pool *pgxpool.Pool
}

func NewPostgresRecordSource(pool *pgxpool.Pool) *PostgresRecordSource {
	return &PostgresRecordSource{pool: pool}
}

// Snapshot loads every record of the given type, oldest first. Ratio metrics
// are recomputed from the stored additive columns rather than trusted from
// the table, so stale denormalized values cannot leak into query results.
func (s *PostgresRecordSource) Snapshot(ctx context.Context, recordType models.RecordType) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, record_type, date,
			   advertiser, campaign, channel,
			   placement_id, site_domain, inventory_type,
			   country, city, device_type, device_os, venue_type,
			   impressions, clicks, conversions, spend, revenue,
			   verified_visits, video_starts, video_completions,
			   viewability_rate, completion_rate, dwell_time_sec
		FROM daily_records
		WHERE record_type = $1
		ORDER BY date ASC
	`, string(recordType))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", recordType, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var recordTypeStr string
		err := rows.Scan(
			&r.ID, &recordTypeStr, &r.Date,
			&r.Advertiser, &r.Campaign, &r.Channel,
			&r.PlacementID, &r.SiteDomain, &r.InventoryType,
			&r.Country, &r.City, &r.DeviceType, &r.DeviceOS, &r.VenueType,
			&r.Metrics.Impressions, &r.Metrics.Clicks, &r.Metrics.Conversions,
			&r.Metrics.Spend, &r.Metrics.Revenue,
			&r.Metrics.VerifiedVisits, &r.Metrics.VideoStarts, &r.Metrics.VideoCompletions,
			&r.Metrics.ViewabilityRate, &r.Metrics.CompletionRate, &r.Metrics.DwellTimeSec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Type = models.RecordType(recordTypeStr)
		r.Metrics.RecomputeRatios()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// Append inserts one record. Used by the ingest path when Postgres backs the
// store.
func (s *PostgresRecordSource) Append(ctx context.Context, r models.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_records (
			id, record_type, date,
			advertiser, campaign, channel,
			placement_id, site_domain, inventory_type,
			country, city, device_type, device_os, venue_type,
			impressions, clicks, conversions, spend, revenue,
			verified_visits, video_starts, video_completions,
			viewability_rate, completion_rate, dwell_time_sec
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
	`,
		r.ID, string(r.Type), r.Date,
		r.Advertiser, r.Campaign, r.Channel,
		r.PlacementID, r.SiteDomain, r.InventoryType,
		r.Country, r.City, r.DeviceType, r.DeviceOS, r.VenueType,
		r.Metrics.Impressions, r.Metrics.Clicks, r.Metrics.Conversions,
		r.Metrics.Spend, r.Metrics.Revenue,
		r.Metrics.VerifiedVisits, r.Metrics.VideoStarts, r.Metrics.VideoCompletions,
		r.Metrics.ViewabilityRate, r.Metrics.CompletionRate, r.Metrics.DwellTimeSec,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}
