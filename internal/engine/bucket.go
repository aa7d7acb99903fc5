package engine

import (
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// Granularity selects how records are re-bucketed in time.
type Granularity string

const (
	GranularityDay   Granularity = Granularity(models.AggregationDay)
	GranularityWeek  Granularity = Granularity(models.AggregationWeek)
	GranularityMonth Granularity = Granularity(models.AggregationMonth)
	GranularityAll   Granularity = Granularity(models.AggregationAll)
)

// ParseGranularity maps a caller token to a Granularity. Unknown tokens
// default to day.
func ParseGranularity(token string) Granularity {
	switch Granularity(token) {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityAll:
		return Granularity(token)
	default:
		return GranularityDay
	}
}

// BucketKey assigns a record date to its time bucket. The mapping is total
// and monotonic: every date maps to exactly one key, and dates in ascending
// order produce keys in ascending order.
//
//   - day: the date itself, truncated to midnight
//   - week: the Sunday starting the date's week
//   - month: the first of the date's month
//   - all: the zero time, one bucket for everything
func BucketKey(date time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		d := truncateDay(date)
		return d.AddDate(0, 0, -int(d.Weekday()))
	case GranularityMonth:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	case GranularityAll:
		return time.Time{}
	default:
		return truncateDay(date)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
