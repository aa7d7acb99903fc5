package engine

import (
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideWindow() Window {
	return Window{
		Start: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testRecord(mut func(*models.Record)) models.Record {
	r := models.Record{
		Type:       models.RecordTypeCampaign,
		Date:       time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		Advertiser: "Acme Motors",
		Campaign:   "Summer EV Launch",
		Channel:    "display",
		SiteDomain: "news.example.com",
		City:       "New York",
		DeviceType: "phone",
	}
	if mut != nil {
		mut(&r)
	}
	return r
}

func TestPredicateEmptyCriteriaMatchesAll(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{}, wideWindow())

	r := testRecord(nil)
	assert.True(t, pred(&r))
}

func TestPredicateWindowClause(t *testing.T) {
	window := Window{
		Start: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
	}
	pred := BuildPredicate(models.FilterCriteria{}, window)

	in := testRecord(func(r *models.Record) { r.Date = time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC) })
	out := testRecord(func(r *models.Record) { r.Date = time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC) })
	assert.True(t, pred(&in))
	assert.False(t, pred(&out), "exclusive end")
}

func TestPredicateSubstringCaseInsensitive(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{SiteDomain: "EXAMPLE.com"}, wideWindow())

	match := testRecord(nil)
	miss := testRecord(func(r *models.Record) { r.SiteDomain = "other.org" })
	assert.True(t, pred(&match))
	assert.False(t, pred(&miss))

	cityPred := BuildPredicate(models.FilterCriteria{City: "york"}, wideWindow())
	assert.True(t, cityPred(&match))
}

func TestPredicateEqualityClauses(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{DeviceType: "phone", Channel: "display"}, wideWindow())

	match := testRecord(nil)
	assert.True(t, pred(&match))

	tablet := testRecord(func(r *models.Record) { r.DeviceType = "tablet" })
	assert.False(t, pred(&tablet))
}

func TestPredicateUnrecognizedEnumMatchesNothing(t *testing.T) {
	// Fail closed: a bad enum value produces an empty result, not an error.
	pred := BuildPredicate(models.FilterCriteria{DeviceType: "hologram"}, wideWindow())

	r := testRecord(nil)
	assert.False(t, pred(&r))
}

func TestPredicateSetMembership(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{
		Advertisers: []string{"Acme Motors", "Cascade Coffee"},
	}, wideWindow())

	match := testRecord(nil)
	miss := testRecord(func(r *models.Record) { r.Advertiser = "Bluebird Apparel" })
	assert.True(t, pred(&match))
	assert.False(t, pred(&miss))
}

func TestPredicateClausesAreConjunctive(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{
		Advertisers: []string{"Acme Motors"},
		DeviceType:  "phone",
		City:        "new",
	}, wideWindow())

	all := testRecord(nil)
	assert.True(t, pred(&all))

	oneOff := testRecord(func(r *models.Record) { r.City = "Boston" })
	assert.False(t, pred(&oneOff))
}

func TestFilterIdempotent(t *testing.T) {
	records := []models.Record{
		testRecord(nil),
		testRecord(func(r *models.Record) { r.DeviceType = "tablet" }),
		testRecord(func(r *models.Record) { r.Advertiser = "Cascade Coffee" }),
	}
	pred := BuildPredicate(models.FilterCriteria{DeviceType: "phone"}, wideWindow())

	once := Filter(records, pred)
	twice := Filter(once, pred)

	require.Len(t, once, 2)
	assert.Equal(t, once, twice)
}

func TestPredicateIsPureAndRepeatable(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{City: "york"}, wideWindow())

	r := testRecord(nil)
	for i := 0; i < 3; i++ {
		assert.True(t, pred(&r))
	}
}

func TestMatchNone(t *testing.T) {
	r := testRecord(nil)
	assert.False(t, MatchNone(&r))
	assert.Empty(t, Filter([]models.Record{r}, MatchNone))
}
