package models

// Date-range tokens recognized in FilterCriteria. An unrecognized token falls
// back to DateRangeLast30Days.
const (
	DateRangeYesterday   = "yesterday"
	DateRangeLast7Days   = "last_7_days"
	DateRangeLast30Days  = "last_30_days"
	DateRangeMonthToDate = "month_to_date"
	DateRangeCustom      = "custom"
)

// Aggregation granularity tokens. An unrecognized token defaults to day.
const (
	AggregationDay   = "day"
	AggregationWeek  = "week"
	AggregationMonth = "month"
	AggregationAll   = "all"
)

// FilterCriteria is the caller-supplied constraint set for a report query.
// Absent fields contribute no clause; present fields are ANDed together.
// Criteria live only for the request that carries them.
type FilterCriteria struct {
	DateRange string `json:"date_range,omitempty"`
	StartDate string `json:"start_date,omitempty"` // ISO date, required with date_range=custom
	EndDate   string `json:"end_date,omitempty"`   // ISO date, required with date_range=custom

	Aggregation string `json:"aggregation,omitempty"`

	// Set membership.
	Advertisers []string `json:"advertisers,omitempty"`
	Campaigns   []string `json:"campaigns,omitempty"`

	// Exact equality against a recognized set.
	Channel       string `json:"channel,omitempty"`
	DeviceType    string `json:"device_type,omitempty"`
	DeviceOS      string `json:"device_os,omitempty"`
	InventoryType string `json:"inventory_type,omitempty"`
	VenueType     string `json:"venue_type,omitempty"`
	Country       string `json:"country,omitempty"`

	// Case-insensitive substring.
	SiteDomain string `json:"site_domain,omitempty"`
	City       string `json:"city,omitempty"`
}

// HasAggregation reports whether the caller asked for time bucketing.
func (c FilterCriteria) HasAggregation() bool {
	return c.Aggregation != ""
}

// RankingEntry is one row of a ranked, possibly truncated, leaderboard.
// Rank is 1-based and contiguous; ties keep their input order and receive
// consecutive distinct ranks.
type RankingEntry struct {
	Rank     int     `json:"rank"`
	Identity string  `json:"identity"`
	Value    float64 `json:"value"`
	Metric   string  `json:"metric"`
}

// QueryResponse is the JSON envelope every report endpoint returns.
// Total is always len(data). A filter matching nothing is a success with
// total 0; only upstream acquisition failures set Success to false.
type QueryResponse struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data"`
	Total   int            `json:"total"`
	Filters FilterCriteria `json:"filters"`
	Error   string         `json:"error,omitempty"`
}
