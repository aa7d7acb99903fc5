package engine

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketKeyDay(t *testing.T) {
	date := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, date, BucketKey(date, GranularityDay))
}

func TestBucketKeyWeekSundayAligned(t *testing.T) {
	// 2025-07-06 is a Sunday.
	sunday := time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		assert.Equal(t, sunday, BucketKey(day, GranularityWeek), "weekday %s", day.Weekday())
	}

	nextSunday := sunday.AddDate(0, 0, 7)
	assert.Equal(t, nextSunday, BucketKey(nextSunday, GranularityWeek))
}

func TestBucketKeyMonth(t *testing.T) {
	date := time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), BucketKey(date, GranularityMonth))
}

func TestBucketKeyAllIsConstant(t *testing.T) {
	a := BucketKey(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), GranularityAll)
	b := BucketKey(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), GranularityAll)
	assert.Equal(t, a, b)
}

func TestBucketKeyDeterministic(t *testing.T) {
	date := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth, GranularityAll} {
		assert.Equal(t, BucketKey(date, g), BucketKey(date, g))
	}
}

func TestBucketKeyMonotonicWithDate(t *testing.T) {
	// Records sorted by date stay sorted by bucket key.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 90)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth, GranularityAll} {
		keys := make([]time.Time, len(dates))
		for i, d := range dates {
			keys[i] = BucketKey(d, g)
		}
		sorted := sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
		assert.True(t, sorted, "granularity %s", g)
	}
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, GranularityWeek, ParseGranularity("week"))
	assert.Equal(t, GranularityMonth, ParseGranularity("month"))
	assert.Equal(t, GranularityAll, ParseGranularity("all"))
	assert.Equal(t, GranularityDay, ParseGranularity("day"))

	// Unknown tokens default to day rather than failing.
	assert.Equal(t, GranularityDay, ParseGranularity("hourly"))
	assert.Equal(t, GranularityDay, ParseGranularity(""))
}
