package engine

import (
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC)

func TestResolveWindowPresets(t *testing.T) {
	tests := []struct {
		name      string
		dateRange string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "yesterday",
			dateRange: models.DateRangeYesterday,
			wantStart: testNow.Add(-24 * time.Hour),
			wantEnd:   testNow,
		},
		{
			name:      "last 7 days",
			dateRange: models.DateRangeLast7Days,
			wantStart: testNow.AddDate(0, 0, -7),
			wantEnd:   testNow,
		},
		{
			name:      "last 30 days",
			dateRange: models.DateRangeLast30Days,
			wantStart: testNow.AddDate(0, 0, -30),
			wantEnd:   testNow,
		},
		{
			name:      "month to date",
			dateRange: models.DateRangeMonthToDate,
			wantStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   testNow,
		},
		{
			name:      "empty token defaults to last 30 days",
			dateRange: "",
			wantStart: testNow.AddDate(0, 0, -30),
			wantEnd:   testNow,
		},
		{
			name:      "unknown token defaults to last 30 days",
			dateRange: "fortnight",
			wantStart: testNow.AddDate(0, 0, -30),
			wantEnd:   testNow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ResolveWindow(models.FilterCriteria{DateRange: tt.dateRange}, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
		})
	}
}

func TestResolveWindowCustomInclusiveBounds(t *testing.T) {
	w, err := ResolveWindow(models.FilterCriteria{
		DateRange: models.DateRangeCustom,
		StartDate: "2025-07-01",
		EndDate:   "2025-07-01",
	}, testNow)
	require.NoError(t, err)

	// Both bounds inclusive: a record dated exactly end_date matches.
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, w.Contains(day))
	assert.False(t, w.Contains(day.AddDate(0, 0, 1)))
	assert.False(t, w.Contains(day.AddDate(0, 0, -1)))
}

func TestResolveWindowCustomUsesReportingLocation(t *testing.T) {
	// Record dates carry the reporting timezone, so the custom bounds must
	// resolve there too, not in UTC.
	loc := time.FixedZone("UTC+2", 2*60*60)
	nowInLoc := time.Date(2025, 7, 15, 10, 30, 0, 0, loc)

	w, err := ResolveWindow(models.FilterCriteria{
		DateRange: models.DateRangeCustom,
		StartDate: "2025-07-01",
		EndDate:   "2025-07-01",
	}, nowInLoc)
	require.NoError(t, err)

	midnight := time.Date(2025, 7, 1, 0, 0, 0, 0, loc)
	assert.True(t, w.Contains(midnight))
	assert.True(t, w.Contains(midnight.Add(23*time.Hour)))
	assert.False(t, w.Contains(midnight.AddDate(0, 0, 1)))
	assert.False(t, w.Contains(midnight.Add(-time.Second)))
}

func TestResolveWindowCustomMalformed(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"unparseable start", "07/01/2025", "2025-07-10"},
		{"unparseable end", "2025-07-01", "July 10"},
		{"start after end", "2025-07-10", "2025-07-01"},
		{"missing bounds", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWindow(models.FilterCriteria{
				DateRange: models.DateRangeCustom,
				StartDate: tt.start,
				EndDate:   tt.end,
			}, testNow)
			assert.Error(t, err)
		})
	}
}

func TestResolveWindowDeterministic(t *testing.T) {
	for _, token := range []string{
		models.DateRangeYesterday,
		models.DateRangeLast7Days,
		models.DateRangeLast30Days,
		models.DateRangeMonthToDate,
	} {
		first, err := ResolveWindow(models.FilterCriteria{DateRange: token}, testNow)
		require.NoError(t, err)
		second, err := ResolveWindow(models.FilterCriteria{DateRange: token}, testNow)
		require.NoError(t, err)
		assert.Equal(t, first, second, "token %s", token)
	}
}

func TestWindowContainsHalfOpen(t *testing.T) {
	w := Window{Start: testNow.AddDate(0, 0, -7), End: testNow}

	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))
	assert.True(t, w.Contains(w.End.Add(-time.Second)))
}
