package engine

import (
	"math"
	"sort"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// Order is the ranking direction.
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// Rank orders records by the named metric field and returns 1-based ranking
// entries. The sort is stable: records with equal values keep their input
// order and receive consecutive distinct ranks, not shared ranks. A record
// whose metric is unknown sorts last for the requested order. limit > 0
// truncates the ranked output; ranks past the cut are not emitted and the
// remaining ranks are not renumbered.
func Rank(records []models.Record, metric string, order Order, limit int) []models.RankingEntry {
	type scored struct {
		record *models.Record
		value  float64
	}

	items := make([]scored, len(records))
	for i := range records {
		items[i] = scored{record: &records[i], value: metricValue(&records[i], metric, order)}
	}

	if order == OrderAsc {
		sort.SliceStable(items, func(i, j int) bool { return items[i].value < items[j].value })
	} else {
		sort.SliceStable(items, func(i, j int) bool { return items[i].value > items[j].value })
	}

	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}

	entries := make([]models.RankingEntry, 0, n)
	for i := 0; i < n; i++ {
		value := items[i].value
		if math.IsInf(value, 0) {
			value = 0
		}
		entries = append(entries, models.RankingEntry{
			Rank:     i + 1,
			Identity: items[i].record.Identity(),
			Value:    value,
			Metric:   metric,
		})
	}
	return entries
}

// TopPlacementLimit is the fixed server-side cut for the placement
// leaderboard. It is policy, not caller input.
const TopPlacementLimit = 75

// TopByImpressions is the leaderboard specialization: descending by
// impressions, truncated to limit, same stable-sort contract as Rank.
func TopByImpressions(records []models.Record, limit int) []models.RankingEntry {
	return Rank(records, "impressions", OrderDesc, limit)
}

// metricValue reads the named metric. An unknown field becomes
// the identity element for the requested order so it sorts last.
func metricValue(r *models.Record, metric string, order Order) float64 {
	m := r.Metrics
	switch metric {
	case "impressions":
		return float64(m.Impressions)
	case "clicks":
		return float64(m.Clicks)
	case "conversions":
		return float64(m.Conversions)
	case "spend":
		return m.Spend
	case "revenue":
		return m.Revenue
	case "verified_visits":
		return float64(m.VerifiedVisits)
	case "video_starts":
		return float64(m.VideoStarts)
	case "video_completions":
		return float64(m.VideoCompletions)
	case "ctr":
		return m.CTR
	case "cpa":
		return m.CPA
	case "roi":
		return m.ROI
	case "viewability_rate":
		return m.ViewabilityRate
	case "completion_rate":
		return m.CompletionRate
	case "dwell_time_sec":
		return m.DwellTimeSec
	default:
		if order == OrderAsc {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
}
