package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SnapshotCache sits in front of a RecordSource and keeps marshaled
// snapshots in Redis for a short TTL. Cache problems never fail a query; a
// broken cache degrades to the inner source.
type SnapshotCache struct {
	client  *redis.Client
	inner   RecordSource
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewSnapshotCache(client *redis.Client, inner RecordSource, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *SnapshotCache {
	return &SnapshotCache{
		client:  client,
		inner:   inner,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func snapshotKey(recordType models.RecordType) string {
	return fmt.Sprintf("insights:snapshot:%s", recordType)
}

// Snapshot returns the cached snapshot when present, otherwise loads from the
// inner source and caches the result.
func (c *SnapshotCache) Snapshot(ctx context.Context, recordType models.RecordType) ([]models.Record, error) {
	key := snapshotKey(recordType)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var records []models.Record
		if err := json.Unmarshal(raw, &records); err == nil {
			if c.metrics != nil {
				c.metrics.CacheHits.WithLabelValues(string(recordType)).Inc()
			}
			return records, nil
		}
		c.logger.Warn("discarding unreadable snapshot cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
	}

	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(string(recordType)).Inc()
	}

	records, err := c.inner.Snapshot(ctx, recordType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return records, nil
}

// Invalidate drops the cached snapshot for one record type, e.g. after an
// ingest write.
func (c *SnapshotCache) Invalidate(ctx context.Context, recordType models.RecordType) {
	if err := c.client.Del(ctx, snapshotKey(recordType)).Err(); err != nil {
		c.logger.Warn("snapshot cache invalidation failed",
			zap.String("record_type", string(recordType)), zap.Error(err))
	}
}

// LastFilterStore remembers the most recent filter a client submitted. It is
// advisory only: a lost or stale entry carries no correctness obligation, so
// every operation swallows Redis errors after logging.
type LastFilterStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewLastFilterStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *LastFilterStore {
	return &LastFilterStore{client: client, ttl: ttl, logger: logger}
}

func lastFilterKey(clientID string) string {
	return fmt.Sprintf("insights:last_filter:%s", clientID)
}

// Save stores the client's latest filter criteria.
func (s *LastFilterStore) Save(ctx context.Context, clientID string, criteria models.FilterCriteria) {
	if clientID == "" {
		return
	}
	raw, err := json.Marshal(criteria)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, lastFilterKey(clientID), raw, s.ttl).Err(); err != nil {
		s.logger.Debug("last-filter save failed", zap.String("client_id", clientID), zap.Error(err))
	}
}

// Load returns the client's last saved criteria, or false when none exists.
func (s *LastFilterStore) Load(ctx context.Context, clientID string) (models.FilterCriteria, bool) {
	var criteria models.FilterCriteria
	if clientID == "" {
		return criteria, false
	}
	raw, err := s.client.Get(ctx, lastFilterKey(clientID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("last-filter load failed", zap.String("client_id", clientID), zap.Error(err))
		}
		return criteria, false
	}
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return models.FilterCriteria{}, false
	}
	return criteria, true
}
