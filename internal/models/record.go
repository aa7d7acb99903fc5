package models

import (
	"time"
)

// RecordType identifies which reporting entity a record describes.
type RecordType string

const (
	RecordTypeCampaign    RecordType = "campaign"
	RecordTypePlacement   RecordType = "placement"
	RecordTypeGeoDevice   RecordType = "geo_device"
	RecordTypeFootTraffic RecordType = "foot_traffic"
)

// Metrics holds the numeric measures of one daily observation.
//
// Additive measures (impressions through video completions) are safe to sum
// across records. CTR, CPA and ROI are derived ratios and are recomputed from
// summed numerators/denominators when records are aggregated. Viewability
// rate, video completion rate and dwell time carry no numerator/denominator
// decomposition in this shape, so aggregation blends them through an
// approximation policy instead.
type Metrics struct {
	Impressions      int64   `json:"impressions"`
	Clicks           int64   `json:"clicks"`
	Conversions      int64   `json:"conversions"`
	Spend            float64 `json:"spend"`
	Revenue          float64 `json:"revenue"`
	VerifiedVisits   int64   `json:"verified_visits"`
	VideoStarts      int64   `json:"video_starts"`
	VideoCompletions int64   `json:"video_completions"`

	// Derived ratios, 0 when the denominator is 0.
	CTR float64 `json:"ctr"`
	CPA float64 `json:"cpa"`
	ROI float64 `json:"roi"`

	// Approximate-only measures.
	ViewabilityRate float64 `json:"viewability_rate"`
	CompletionRate  float64 `json:"completion_rate"`
	DwellTimeSec    float64 `json:"dwell_time_sec"`
}

// RecomputeRatios fills CTR, CPA and ROI from the additive measures.
// Zero denominators yield 0, never NaN or Inf.
func (m *Metrics) RecomputeRatios() {
	m.CTR = ratio(float64(m.Clicks), float64(m.Impressions))
	m.CPA = ratio(m.Spend, float64(m.Conversions))
	m.ROI = ratio(m.Revenue, m.Spend)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Record is one immutable observation for one entity on one calendar day.
// Identity attributes not applicable to the record's type are left at their
// zero value.
type Record struct {
	ID   string     `json:"id,omitempty"`
	Type RecordType `json:"record_type"`

	// Date is calendar-day granularity in the reporting timezone.
	Date time.Time `json:"date"`

	// Campaign identity
	Advertiser string `json:"advertiser,omitempty"`
	Campaign   string `json:"campaign,omitempty"`
	Channel    string `json:"channel,omitempty"`

	// Placement identity
	PlacementID   string `json:"placement_id,omitempty"`
	SiteDomain    string `json:"site_domain,omitempty"`
	InventoryType string `json:"inventory_type,omitempty"`

	// Geo/device identity
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	DeviceOS   string `json:"device_os,omitempty"`

	// Foot-traffic identity
	VenueType string `json:"venue_type,omitempty"`

	Metrics Metrics `json:"metrics"`
}

// Identity returns the label a ranking entry should display for the record:
// the most specific identity attribute present for its type.
func (r *Record) Identity() string {
	switch r.Type {
	case RecordTypePlacement:
		if r.PlacementID != "" {
			return r.PlacementID
		}
		return r.SiteDomain
	case RecordTypeGeoDevice:
		if r.City != "" {
			return r.City
		}
		return r.Country
	case RecordTypeFootTraffic:
		if r.VenueType != "" {
			return r.VenueType
		}
		return r.City
	default:
		if r.Campaign != "" {
			return r.Campaign
		}
		return r.Advertiser
	}
}
