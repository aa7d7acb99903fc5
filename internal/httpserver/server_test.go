package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/engine"
	"github.com/radiusdt/campaign-insights/internal/geo"
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/radiusdt/campaign-insights/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingSource struct{}

func (failingSource) Snapshot(context.Context, models.RecordType) ([]models.Record, error) {
	return nil, errors.New("upstream unreachable")
}

func testServer(source storage.RecordSource) *Server {
	store := storage.NewInMemoryRecordStore()
	if source == nil {
		source = store
	}
	return &Server{
		engine:      engine.New(nil),
		source:      source,
		sink:        store,
		geoResolver: geo.NoopResolver{},
		logger:      zap.NewNop(),
		config:      &config.Config{},
	}
}

func seededServer(t *testing.T, records ...models.Record) *Server {
	t.Helper()
	store := storage.NewInMemoryRecordStore()
	for _, r := range records {
		require.NoError(t, store.Append(context.Background(), r))
	}
	s := testServer(nil)
	s.source = store
	s.sink = store
	return s
}

func campaignRecord(daysAgo int, campaign string, impressions, clicks int64) models.Record {
	now := time.Now()
	r := models.Record{
		Type:       models.RecordTypeCampaign,
		Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -daysAgo),
		Advertiser: "Acme Motors",
		Campaign:   campaign,
	}
	r.Metrics.Impressions = impressions
	r.Metrics.Clicks = clicks
	r.Metrics.RecomputeRatios()
	return r
}

func doReport(t *testing.T, s *Server, recordType models.RecordType, rank *engine.RankSpec, body interface{}) (*httptest.ResponseRecorder, models.QueryResponse) {
	t.Helper()

	var buf bytes.Buffer
	method := http.MethodGet
	if body != nil {
		method = http.MethodPost
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, "/api/reports/test", &buf)
	rec := httptest.NewRecorder()
	s.reportHandler("test", recordType, rank)(rec, req)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestReportListAll(t *testing.T) {
	s := seededServer(t,
		campaignRecord(1, "Summer EV Launch", 100, 4),
		campaignRecord(2, "Year-End Clearance", 300, 6),
	)

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Empty(t, resp.Error)
}

func TestReportFiltered(t *testing.T) {
	s := seededServer(t,
		campaignRecord(1, "Summer EV Launch", 100, 4),
		campaignRecord(2, "Year-End Clearance", 300, 6),
	)

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, models.FilterCriteria{
		Campaigns: []string{"Year-End Clearance"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"Year-End Clearance"}, resp.Filters.Campaigns)
}

func TestReportEmptyMatchIsSuccess(t *testing.T) {
	s := seededServer(t, campaignRecord(1, "Summer EV Launch", 100, 4))

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, models.FilterCriteria{
		Campaigns: []string{"No Such Campaign"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Total)
}

func TestReportMalformedDatesDegradeToEmptySuccess(t *testing.T) {
	s := seededServer(t, campaignRecord(1, "Summer EV Launch", 100, 4))

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, models.FilterCriteria{
		DateRange: models.DateRangeCustom,
		StartDate: "2025-07-10",
		EndDate:   "2025-07-01",
	})

	// Validation degradation: success with zero rows, criteria echoed back.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, "2025-07-10", resp.Filters.StartDate)
}

func TestReportAggregation(t *testing.T) {
	s := seededServer(t,
		campaignRecord(1, "Summer EV Launch", 100, 4),
		campaignRecord(1, "Summer EV Launch", 300, 6),
	)

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, models.FilterCriteria{
		Aggregation: models.AggregationDay,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, resp.Total)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var records []models.Record
	require.NoError(t, json.Unmarshal(raw, &records))
	assert.Equal(t, int64(400), records[0].Metrics.Impressions)
	assert.InDelta(t, 0.025, records[0].Metrics.CTR, 1e-9)
}

func TestReportUpstreamFailure(t *testing.T) {
	s := testServer(failingSource{})

	rec, resp := doReport(t, s, models.RecordTypeCampaign, nil, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Equal(t, 0, resp.Total)
}

func TestReportTopPlacementsFixedLimit(t *testing.T) {
	store := storage.NewInMemoryRecordStore()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i < 200; i++ {
		r := models.Record{
			Type:        models.RecordTypePlacement,
			Date:        today.AddDate(0, 0, -1),
			PlacementID: "placement-" + strconv.Itoa(i),
		}
		r.Metrics.Impressions = int64(i)
		require.NoError(t, store.Append(context.Background(), r))
	}
	s := testServer(store)

	rank := &engine.RankSpec{Metric: "impressions", Order: engine.OrderDesc, Limit: engine.TopPlacementLimit}
	rec, resp := doReport(t, s, models.RecordTypePlacement, rank, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, engine.TopPlacementLimit, resp.Total)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var entries []models.RankingEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, engine.TopPlacementLimit, entries[len(entries)-1].Rank)
	assert.Equal(t, float64(199), entries[0].Value)
}

func TestReportInvalidBody(t *testing.T) {
	s := testServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/test", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.reportHandler("test", models.RecordTypeCampaign, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportMethodNotAllowed(t *testing.T) {
	s := testServer(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/reports/test", nil)
	rec := httptest.NewRecorder()
	s.reportHandler("test", models.RecordTypeCampaign, nil)(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTrackVisit(t *testing.T) {
	s := testServer(nil)

	body := bytes.NewBufferString(`{"city":"Berlin","venue_type":"mall","visits":12,"dwell_time_sec":95.5}`)
	req := httptest.NewRequest(http.MethodPost, "/track/visit", body)
	rec := httptest.NewRecorder()
	s.handleTrackVisit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	records, err := s.source.Snapshot(context.Background(), models.RecordTypeFootTraffic)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Berlin", records[0].City)
	assert.Equal(t, int64(12), records[0].Metrics.VerifiedVisits)
}

func TestTrackVisitRejectsNonPositiveVisits(t *testing.T) {
	s := testServer(nil)

	body := bytes.NewBufferString(`{"city":"Berlin","venue_type":"mall","visits":0}`)
	req := httptest.NewRequest(http.MethodPost, "/track/visit", body)
	rec := httptest.NewRecorder()
	s.handleTrackVisit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewServerServesGeneratedRecords(t *testing.T) {
	deps := &Dependencies{
		Config: &config.Config{},
		Logger: zap.NewNop(),
	}
	handler := NewServer(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/campaigns", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Total, 0)
}

func TestHealth(t *testing.T) {
	s := testServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
