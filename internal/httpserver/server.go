package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/database"
	"github.com/radiusdt/campaign-insights/internal/engine"
	"github.com/radiusdt/campaign-insights/internal/geo"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/mockdata"
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/radiusdt/campaign-insights/internal/storage"
	"go.uber.org/zap"
)

// ClientIDHeader lets a caller tag requests so its last-used filter can be
// remembered. Purely advisory.
const ClientIDHeader = "X-Client-ID"

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	ClickHouse *database.ClickHouseDB
	Redis      *database.RedisDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps the query engine and its collaborators behind HTTP handlers.
type Server struct {
	engine      *engine.Engine
	source      storage.RecordSource
	sink        storage.RecordSink
	cache       *storage.SnapshotCache
	lastFilters *storage.LastFilterStore
	geoResolver geo.Resolver
	logger      *zap.Logger
	config      *config.Config
	metrics     *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Pick the record source: Postgres, then ClickHouse rollups, then an
	// in-memory store seeded with mock data.
	memStore := storage.NewInMemoryRecordStore()
	var source storage.RecordSource = memStore
	var sink storage.RecordSink = memStore

	switch {
	case deps.DB != nil:
		pg := storage.NewPostgresRecordSource(deps.DB.Pool)
		source = pg
		sink = pg
	case deps.ClickHouse != nil:
		// ClickHouse serves the ad-event record types; foot-traffic
		// observations only exist in the ingest store.
		source = &splitSource{
			primary:     storage.NewClickHouseRecordSource(deps.ClickHouse.Conn),
			footTraffic: memStore,
		}
	default:
		gen := mockdata.NewGenerator(42)
		for recordType, records := range gen.GenerateAll(time.Now(), 35) {
			memStore.Replace(recordType, records)
		}
		deps.Logger.Info("no database configured, serving generated records")
	}

	var cache *storage.SnapshotCache
	var lastFilters *storage.LastFilterStore
	if deps.Redis != nil {
		cache = storage.NewSnapshotCache(deps.Redis.Client, source, deps.Config.Cache.SnapshotTTL, deps.Logger, deps.Metrics)
		source = cache
		lastFilters = storage.NewLastFilterStore(deps.Redis.Client, deps.Config.Cache.LastFilterTTL, deps.Logger)
	}

	var geoResolver geo.Resolver = geo.NoopResolver{}
	if deps.Config.Geo.Enabled {
		resolver, err := geo.NewMaxMindResolver(deps.Config.Geo.DatabasePath)
		if err != nil {
			deps.Logger.Warn("failed to initialize geo resolver, visits will be unattributed", zap.Error(err))
		} else {
			geoResolver = resolver
		}
	}

	s := &Server{
		engine:      engine.New(nil),
		source:      source,
		sink:        sink,
		cache:       cache,
		lastFilters: lastFilters,
		geoResolver: geoResolver,
		logger:      deps.Logger,
		config:      deps.Config,
		metrics:     deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Report queries
	mux.HandleFunc("/api/reports/campaigns", s.reportHandler("campaigns", models.RecordTypeCampaign, nil))
	mux.HandleFunc("/api/reports/placements", s.reportHandler("placements", models.RecordTypePlacement, nil))
	mux.HandleFunc("/api/reports/geo-devices", s.reportHandler("geo_devices", models.RecordTypeGeoDevice, nil))
	mux.HandleFunc("/api/reports/foot-traffic", s.reportHandler("foot_traffic", models.RecordTypeFootTraffic, nil))

	// Leaderboard: the limit is server policy, never read from the request.
	mux.HandleFunc("/api/reports/placements/top", s.reportHandler("placements_top", models.RecordTypePlacement, &engine.RankSpec{
		Metric: "impressions",
		Order:  engine.OrderDesc,
		Limit:  engine.TopPlacementLimit,
	}))

	// Ingest
	mux.HandleFunc("/track/visit", s.handleTrackVisit)

	return mux
}

// splitSource answers foot-traffic snapshots from the ingest store and
// everything else from the primary source.
type splitSource struct {
	primary     storage.RecordSource
	footTraffic storage.RecordSource
}

func (s *splitSource) Snapshot(ctx context.Context, recordType models.RecordType) ([]models.Record, error) {
	if recordType == models.RecordTypeFootTraffic {
		return s.footTraffic.Snapshot(ctx, recordType)
	}
	return s.primary.Snapshot(ctx, recordType)
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Report queries ----

// reportHandler builds the handler for one report endpoint. All five share
// the same pipeline; they differ only in record type and the optional fixed
// ranking.
func (s *Server) reportHandler(endpoint string, recordType models.RecordType, rank *engine.RankSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()

		criteria, ok := s.decodeCriteria(w, r)
		if !ok {
			return
		}

		snapshot, err := s.source.Snapshot(r.Context(), recordType)
		if err != nil {
			s.logger.Error("failed to acquire record snapshot",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.SnapshotFailures.WithLabelValues(string(recordType)).Inc()
			}
			s.failureResponse(w, criteria)
			s.observe(endpoint, http.StatusInternalServerError, 0, false, start)
			return
		}
		if s.metrics != nil {
			s.metrics.SnapshotLoads.WithLabelValues(string(recordType)).Inc()
		}

		result := s.engine.Query(snapshot, criteria, rank, time.Now())
		if result.Degraded {
			s.logger.Warn("query degraded to empty result",
				zap.String("endpoint", endpoint),
				zap.String("start_date", criteria.StartDate),
				zap.String("end_date", criteria.EndDate),
			)
		}

		s.rememberFilter(r, criteria)

		var data interface{}
		var total int
		if rank != nil {
			data = result.Ranking
			total = len(result.Ranking)
		} else {
			data = result.Records
			total = len(result.Records)
		}

		s.jsonResponse(w, models.QueryResponse{
			Success: true,
			Data:    data,
			Total:   total,
			Filters: result.Criteria,
		})
		s.observe(endpoint, http.StatusOK, total, result.Degraded, start)
	}
}

// decodeCriteria reads filter criteria from the request body. GET requests
// and empty bodies mean match-all. Returns false after writing an error
// response when the body is not valid JSON.
func (s *Server) decodeCriteria(w http.ResponseWriter, r *http.Request) (models.FilterCriteria, bool) {
	var criteria models.FilterCriteria
	if r.Method != http.MethodPost || r.Body == nil {
		return criteria, true
	}

	err := json.NewDecoder(r.Body).Decode(&criteria)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Empty body: list everything.
			return models.FilterCriteria{}, true
		}
		s.errorResponse(w, "invalid request body", http.StatusBadRequest)
		return criteria, false
	}
	return criteria, true
}

func (s *Server) rememberFilter(r *http.Request, criteria models.FilterCriteria) {
	if s.lastFilters == nil {
		return
	}
	clientID := r.Header.Get(ClientIDHeader)
	if clientID == "" {
		return
	}
	s.lastFilters.Save(r.Context(), clientID, criteria)
}

func (s *Server) observe(endpoint string, status, total int, degraded bool, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordQuery(endpoint, status, total, degraded, time.Since(start))
	}
}

// ---- Ingest ----

type trackVisitRequest struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	VenueType string  `json:"venue_type"`
	Visits    int64   `json:"visits"`
	DwellSec  float64 `json:"dwell_time_sec"`
}

// handleTrackVisit appends one foot-traffic observation. City and country
// fall back to GeoIP attribution of the caller address when not supplied.
func (s *Server) handleTrackVisit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req trackVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Visits <= 0 {
		s.errorResponse(w, "visits must be positive", http.StatusBadRequest)
		return
	}

	if req.City == "" {
		if info, err := s.geoResolver.Resolve(clientIP(r)); err == nil {
			req.City = info.City
			if req.Country == "" {
				req.Country = info.Country
			}
		}
	}

	now := time.Now()
	record := models.Record{
		ID:        uuid.NewString(),
		Type:      models.RecordTypeFootTraffic,
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Country:   req.Country,
		City:      req.City,
		VenueType: req.VenueType,
	}
	record.Metrics.VerifiedVisits = req.Visits
	record.Metrics.DwellTimeSec = req.DwellSec

	if err := s.sink.Append(r.Context(), record); err != nil {
		s.logger.Error("failed to append visit record", zap.Error(err))
		s.errorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if s.cache != nil {
		s.cache.Invalidate(r.Context(), models.RecordTypeFootTraffic)
	}
	if s.metrics != nil {
		s.metrics.VisitsTracked.WithLabelValues(req.City).Inc()
	}

	s.jsonResponse(w, map[string]interface{}{"success": true, "id": record.ID})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// failureResponse is the upstream-unavailable shape: success false, generic
// error, criteria echoed so the caller can tell it apart from "no data".
func (s *Server) failureResponse(w http.ResponseWriter, criteria models.FilterCriteria) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.QueryResponse{
		Success: false,
		Data:    []models.Record{},
		Total:   0,
		Filters: criteria,
		Error:   "Internal server error",
	})
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": message})
}
