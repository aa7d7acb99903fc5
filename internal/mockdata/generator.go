// Package mockdata synthesizes a realistic record set for development and
// for deployments without a configured database.
package mockdata

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Generator produces record sets whose dimensions and metrics are
// deterministic for a given seed and day range, which keeps local runs and
// examples stable. Record ids are freshly generated each run.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var (
	advertisers = []string{"Acme Motors", "Bluebird Apparel", "Cascade Coffee", "Drift Travel"}
	campaigns   = map[string][]string{
		"Acme Motors":      {"Summer EV Launch", "Year-End Clearance"},
		"Bluebird Apparel": {"Fall Collection", "Denim Week"},
		"Cascade Coffee":   {"Cold Brew Promo"},
		"Drift Travel":     {"Island Getaways", "City Breaks"},
	}
	channels       = []string{"display", "video", "native", "social"}
	siteDomains    = []string{"news.example.com", "sports.example.org", "recipes.example.net", "weather.example.io", "games.example.co"}
	inventoryTypes = []string{"web", "app", "ctv"}
	countries      = []string{"US", "CA", "GB", "DE"}
	cities         = []string{"New York", "Toronto", "London", "Berlin", "Chicago", "Vancouver"}
	deviceTypes    = []string{"phone", "tablet", "desktop", "ctv"}
	deviceOS       = []string{"android", "ios", "windows", "macos"}
	venueTypes     = []string{"mall", "airport", "transit", "retail"}
)

// GenerateAll fills the given days-back window ending at now with records of
// every type.
func (g *Generator) GenerateAll(now time.Time, days int) map[models.RecordType][]models.Record {
	return map[models.RecordType][]models.Record{
		models.RecordTypeCampaign:    g.CampaignRecords(now, days),
		models.RecordTypePlacement:   g.PlacementRecords(now, days),
		models.RecordTypeGeoDevice:   g.GeoDeviceRecords(now, days),
		models.RecordTypeFootTraffic: g.FootTrafficRecords(now, days),
	}
}

// CampaignRecords generates one record per campaign per channel per day.
func (g *Generator) CampaignRecords(now time.Time, days int) []models.Record {
	var records []models.Record
	for _, date := range dayRange(now, days) {
		for _, adv := range advertisers {
			for _, camp := range campaigns[adv] {
				channel := channels[g.rng.Intn(len(channels))]
				r := models.Record{
					ID:         uuid.NewString(),
					Type:       models.RecordTypeCampaign,
					Date:       date,
					Advertiser: adv,
					Campaign:   camp,
					Channel:    channel,
				}
				g.fillMetrics(&r.Metrics, channel == "video")
				records = append(records, r)
			}
		}
	}
	return records
}

// PlacementRecords generates one record per site/inventory pairing per day.
func (g *Generator) PlacementRecords(now time.Time, days int) []models.Record {
	var records []models.Record
	for _, date := range dayRange(now, days) {
		for i, domain := range siteDomains {
			inv := inventoryTypes[i%len(inventoryTypes)]
			r := models.Record{
				ID:            uuid.NewString(),
				Type:          models.RecordTypePlacement,
				Date:          date,
				PlacementID:   domain + "/" + inv,
				SiteDomain:    domain,
				InventoryType: inv,
			}
			g.fillMetrics(&r.Metrics, inv == "ctv")
			records = append(records, r)
		}
	}
	return records
}

// GeoDeviceRecords generates records across city/device combinations per day.
func (g *Generator) GeoDeviceRecords(now time.Time, days int) []models.Record {
	var records []models.Record
	for _, date := range dayRange(now, days) {
		for i, city := range cities {
			r := models.Record{
				ID:         uuid.NewString(),
				Type:       models.RecordTypeGeoDevice,
				Date:       date,
				Country:    countries[i%len(countries)],
				City:       city,
				DeviceType: deviceTypes[g.rng.Intn(len(deviceTypes))],
				DeviceOS:   deviceOS[g.rng.Intn(len(deviceOS))],
			}
			g.fillMetrics(&r.Metrics, false)
			records = append(records, r)
		}
	}
	return records
}

// FootTrafficRecords generates per-city venue samples with visit and dwell
// measures.
func (g *Generator) FootTrafficRecords(now time.Time, days int) []models.Record {
	var records []models.Record
	for _, date := range dayRange(now, days) {
		for i, city := range cities {
			r := models.Record{
				ID:        uuid.NewString(),
				Type:      models.RecordTypeFootTraffic,
				Date:      date,
				Country:   countries[i%len(countries)],
				City:      city,
				VenueType: venueTypes[g.rng.Intn(len(venueTypes))],
			}
			r.Metrics.Impressions = int64(g.rng.Intn(5000) + 200)
			r.Metrics.VerifiedVisits = int64(g.rng.Intn(400) + 10)
			r.Metrics.DwellTimeSec = 30 + g.rng.Float64()*300
			r.Metrics.RecomputeRatios()
			records = append(records, r)
		}
	}
	return records
}

func (g *Generator) fillMetrics(m *models.Metrics, video bool) {
	m.Impressions = int64(g.rng.Intn(90000) + 1000)
	m.Clicks = int64(float64(m.Impressions) * (0.002 + g.rng.Float64()*0.03))
	m.Conversions = int64(float64(m.Clicks) * (0.01 + g.rng.Float64()*0.1))
	m.Spend = float64(m.Impressions) / 1000 * (1 + g.rng.Float64()*9)
	m.Revenue = float64(m.Conversions) * (5 + g.rng.Float64()*45)
	m.ViewabilityRate = 0.4 + g.rng.Float64()*0.55
	if video {
		m.VideoStarts = int64(float64(m.Impressions) * (0.5 + g.rng.Float64()*0.4))
		m.VideoCompletions = int64(float64(m.VideoStarts) * (0.3 + g.rng.Float64()*0.6))
		m.CompletionRate = float64(m.VideoCompletions) / float64(m.VideoStarts)
	}
	m.RecomputeRatios()
}

// dayRange lists calendar days from days-1 back through yesterday, oldest
// first, truncated to midnight.
func dayRange(now time.Time, days int) []time.Time {
	out := make([]time.Time, 0, days)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := days; i >= 1; i-- {
		out = append(out, midnight.AddDate(0, 0, -i))
	}
	return out
}
