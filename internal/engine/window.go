package engine

import (
	"fmt"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

const dateLayout = "2006-01-02"

// Window is a concrete [Start, End) instant interval. Records are in-window
// when Start <= date < End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ResolveWindow turns a date-range token into a concrete window relative to
// now. The clock is injected so resolution stays a pure function: the same
// token and now always produce the same bounds.
//
// Preset tokens produce half-open [now-delta, now) windows. The custom token
// is the one exception: both caller-supplied bounds are inclusive, so the
// returned End is the day after end_date. An unrecognized token falls back to
// last_30_days.
//
// Malformed custom bounds (unparseable dates, start after end) return an
// error; callers degrade that to an empty result set, not a full scan.
func ResolveWindow(criteria models.FilterCriteria, now time.Time) (Window, error) {
	switch criteria.DateRange {
	case models.DateRangeYesterday:
		return Window{Start: now.Add(-24 * time.Hour), End: now}, nil
	case models.DateRangeLast7Days:
		return Window{Start: now.AddDate(0, 0, -7), End: now}, nil
	case models.DateRangeMonthToDate:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: now}, nil
	case models.DateRangeCustom:
		return resolveCustom(criteria.StartDate, criteria.EndDate, now.Location())
	default:
		return Window{Start: now.AddDate(0, 0, -30), End: now}, nil
	}
}

// resolveCustom parses the bounds in the reporting location, the same one
// record dates carry, so the comparison never straddles a timezone offset.
func resolveCustom(startDate, endDate string, loc *time.Location) (Window, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start_date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end_date %q: %w", endDate, err)
	}
	if start.After(end) {
		return Window{}, fmt.Errorf("start_date %s is after end_date %s", startDate, endDate)
	}
	// Inclusive end: push the exclusive bound to the next day so a record
	// dated exactly end_date still matches.
	return Window{Start: start, End: end.AddDate(0, 0, 1)}, nil
}
