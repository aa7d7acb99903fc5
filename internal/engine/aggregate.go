package engine

import (
	"sort"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// ApproxPolicy blends the measures that cannot be recomputed exactly from
// sums (viewability rate, video completion rate, dwell time). Each sample
// carries the record's impressions as its weight.
type ApproxPolicy interface {
	Blend(values []float64, weights []int64) float64
}

// ImpressionWeightedMean is the default ApproxPolicy: a mean weighted by each
// record's impression volume. This is an approximation, not an exact
// recomputation; the true per-impression distribution is not retained in the
// record shape. Records with zero impressions fall back to an unweighted mean.
type ImpressionWeightedMean struct{}

func (ImpressionWeightedMean) Blend(values []float64, weights []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum, weightSum float64
	for i, v := range values {
		w := float64(weights[i])
		sum += v * w
		weightSum += w
	}
	if weightSum == 0 {
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
	return sum / weightSum
}

// Aggregate folds one bucket of records into a single aggregate record.
//
// Additive measures are summed, so totals are conserved across any bucketing.
// Ratio metrics are recomputed from the summed numerator and denominator, not
// averaged per record; averaging would let low-volume, high-ratio records
// distort the aggregate. A zero summed denominator yields a 0 ratio. A bucket
// of one record aggregates to itself.
//
// records must be non-empty. The bucket key becomes the aggregate's date; the
// identity attributes shared by every record in the bucket are kept, the rest
// are cleared.
func Aggregate(records []models.Record, key time.Time, policy ApproxPolicy) models.Record {
	if policy == nil {
		policy = ImpressionWeightedMean{}
	}

	agg := commonIdentity(records)
	agg.Date = key

	viewability := make([]float64, len(records))
	completion := make([]float64, len(records))
	dwell := make([]float64, len(records))
	weights := make([]int64, len(records))

	for i := range records {
		m := &records[i].Metrics
		agg.Metrics.Impressions += m.Impressions
		agg.Metrics.Clicks += m.Clicks
		agg.Metrics.Conversions += m.Conversions
		agg.Metrics.Spend += m.Spend
		agg.Metrics.Revenue += m.Revenue
		agg.Metrics.VerifiedVisits += m.VerifiedVisits
		agg.Metrics.VideoStarts += m.VideoStarts
		agg.Metrics.VideoCompletions += m.VideoCompletions

		viewability[i] = m.ViewabilityRate
		completion[i] = m.CompletionRate
		dwell[i] = m.DwellTimeSec
		weights[i] = m.Impressions
	}

	agg.Metrics.RecomputeRatios()
	agg.Metrics.ViewabilityRate = policy.Blend(viewability, weights)
	agg.Metrics.CompletionRate = policy.Blend(completion, weights)
	agg.Metrics.DwellTimeSec = policy.Blend(dwell, weights)

	return agg
}

// AggregateByBucket buckets records at the given granularity, aggregates each
// bucket, and returns one aggregate record per bucket ordered by bucket key
// ascending. Every input record lands in exactly one bucket.
func AggregateByBucket(records []models.Record, g Granularity, policy ApproxPolicy) []models.Record {
	if len(records) == 0 {
		return []models.Record{}
	}

	buckets := make(map[time.Time][]models.Record)
	for _, r := range records {
		key := BucketKey(r.Date, g)
		buckets[key] = append(buckets[key], r)
	}

	keys := make([]time.Time, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]models.Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, Aggregate(buckets[key], key, policy))
	}
	return out
}

// commonIdentity keeps the identity attributes every record in the bucket
// agrees on and clears the ones that differ, so an aggregate never claims an
// identity only some of its inputs had.
func commonIdentity(records []models.Record) models.Record {
	agg := models.Record{Type: records[0].Type}
	agg.Advertiser = commonString(records, func(r *models.Record) string { return r.Advertiser })
	agg.Campaign = commonString(records, func(r *models.Record) string { return r.Campaign })
	agg.Channel = commonString(records, func(r *models.Record) string { return r.Channel })
	agg.PlacementID = commonString(records, func(r *models.Record) string { return r.PlacementID })
	agg.SiteDomain = commonString(records, func(r *models.Record) string { return r.SiteDomain })
	agg.InventoryType = commonString(records, func(r *models.Record) string { return r.InventoryType })
	agg.Country = commonString(records, func(r *models.Record) string { return r.Country })
	agg.City = commonString(records, func(r *models.Record) string { return r.City })
	agg.DeviceType = commonString(records, func(r *models.Record) string { return r.DeviceType })
	agg.DeviceOS = commonString(records, func(r *models.Record) string { return r.DeviceOS })
	agg.VenueType = commonString(records, func(r *models.Record) string { return r.VenueType })
	return agg
}

func commonString(records []models.Record, field func(*models.Record) string) string {
	first := field(&records[0])
	for i := 1; i < len(records); i++ {
		if field(&records[i]) != first {
			return ""
		}
	}
	return first
}
