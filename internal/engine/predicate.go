package engine

import (
	"strings"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// Predicate is a boolean test applied per record during filtering.
type Predicate func(*models.Record) bool

// Recognized values for the equality-constrained attribute fields. An
// unrecognized caller value matches nothing rather than erroring, so a bad
// enum shows up as an empty result set.
var (
	knownChannels       = map[string]bool{"display": true, "video": true, "native": true, "audio": true, "social": true, "search": true}
	knownDeviceTypes    = map[string]bool{"phone": true, "tablet": true, "desktop": true, "ctv": true}
	knownDeviceOS       = map[string]bool{"android": true, "ios": true, "windows": true, "macos": true, "linux": true, "roku": true, "tvos": true}
	knownInventoryTypes = map[string]bool{"web": true, "app": true, "ctv": true, "dooh": true}
	knownVenueTypes     = map[string]bool{"mall": true, "airport": true, "transit": true, "stadium": true, "retail": true, "grocery": true}
)

// BuildPredicate compiles filter criteria plus a resolved time window into a
// single conjunctive test. Absent criteria contribute no clause. Building is
// pure; the returned predicate can be applied any number of times.
func BuildPredicate(criteria models.FilterCriteria, window Window) Predicate {
	clauses := []Predicate{
		func(r *models.Record) bool { return window.Contains(r.Date) },
	}

	if len(criteria.Advertisers) > 0 {
		set := toSet(criteria.Advertisers)
		clauses = append(clauses, func(r *models.Record) bool { return set[r.Advertiser] })
	}
	if len(criteria.Campaigns) > 0 {
		set := toSet(criteria.Campaigns)
		clauses = append(clauses, func(r *models.Record) bool { return set[r.Campaign] })
	}

	clauses = appendEqualClause(clauses, criteria.Channel, knownChannels, func(r *models.Record) string { return r.Channel })
	clauses = appendEqualClause(clauses, criteria.DeviceType, knownDeviceTypes, func(r *models.Record) string { return r.DeviceType })
	clauses = appendEqualClause(clauses, criteria.DeviceOS, knownDeviceOS, func(r *models.Record) string { return r.DeviceOS })
	clauses = appendEqualClause(clauses, criteria.InventoryType, knownInventoryTypes, func(r *models.Record) string { return r.InventoryType })
	clauses = appendEqualClause(clauses, criteria.VenueType, knownVenueTypes, func(r *models.Record) string { return r.VenueType })

	if criteria.Country != "" {
		want := strings.ToUpper(criteria.Country)
		clauses = append(clauses, func(r *models.Record) bool { return strings.ToUpper(r.Country) == want })
	}

	clauses = appendSubstringClause(clauses, criteria.SiteDomain, func(r *models.Record) string { return r.SiteDomain })
	clauses = appendSubstringClause(clauses, criteria.City, func(r *models.Record) string { return r.City })

	return func(r *models.Record) bool {
		for _, clause := range clauses {
			if !clause(r) {
				return false
			}
		}
		return true
	}
}

// MatchNone is the degraded predicate used when the date clause itself is
// invalid: every record fails, the caller sees an empty-but-successful result.
func MatchNone(*models.Record) bool { return false }

// Filter applies pred to records and returns the matching subset. Filtering
// is idempotent: applying the same predicate to its own output is a no-op.
func Filter(records []models.Record, pred Predicate) []models.Record {
	out := make([]models.Record, 0, len(records))
	for i := range records {
		if pred(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func appendEqualClause(clauses []Predicate, value string, known map[string]bool, field func(*models.Record) string) []Predicate {
	if value == "" {
		return clauses
	}
	want := strings.ToLower(value)
	if !known[want] {
		// Fail closed, not loud.
		return append(clauses, MatchNone)
	}
	return append(clauses, func(r *models.Record) bool {
		return strings.ToLower(field(r)) == want
	})
}

func appendSubstringClause(clauses []Predicate, value string, field func(*models.Record) string) []Predicate {
	if value == "" {
		return clauses
	}
	want := strings.ToLower(value)
	return append(clauses, func(r *models.Record) bool {
		return strings.Contains(strings.ToLower(field(r)), want)
	})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
