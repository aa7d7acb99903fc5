package engine

import (
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// RankSpec asks the orchestrator to rank the (possibly aggregated) result.
type RankSpec struct {
	Metric string
	Order  Order
	Limit  int
}

// Result is the outcome of one query pipeline run. Records always holds the
// filtered (and aggregated, when requested) set; Ranking is non-nil only when
// a RankSpec was supplied. Degraded marks results forced empty by malformed
// criteria, so callers can log the distinction; the response envelope still
// reports success.
type Result struct {
	Records  []models.Record
	Ranking  []models.RankingEntry
	Criteria models.FilterCriteria
	Degraded bool
}

// Engine runs the filter/aggregate/rank pipeline. It holds no mutable state;
// one Engine serves arbitrarily many concurrent queries over immutable
// snapshots.
type Engine struct {
	policy ApproxPolicy
}

// New returns an Engine using the given approximation policy, or the default
// impressions-weighted mean when policy is nil.
func New(policy ApproxPolicy) *Engine {
	if policy == nil {
		policy = ImpressionWeightedMean{}
	}
	return &Engine{policy: policy}
}

// Query runs the one-shot pipeline over an immutable snapshot:
// resolve window, build predicate, filter, optionally bucket and aggregate,
// optionally rank. An empty match is not an error. now is injected by the
// caller; the engine never reads the ambient clock.
func (e *Engine) Query(snapshot []models.Record, criteria models.FilterCriteria, rank *RankSpec, now time.Time) Result {
	result := Result{Criteria: criteria}

	window, err := ResolveWindow(criteria, now)
	var pred Predicate = MatchNone
	if err != nil {
		// Malformed custom bounds: zero-result response, never a full scan.
		result.Degraded = true
	} else {
		pred = BuildPredicate(criteria, window)
	}

	filtered := Filter(snapshot, pred)

	if criteria.HasAggregation() {
		g := ParseGranularity(criteria.Aggregation)
		filtered = AggregateByBucket(filtered, g, e.policy)
	}
	result.Records = filtered

	if rank != nil {
		order := rank.Order
		if order == "" {
			order = OrderDesc
		}
		result.Ranking = Rank(filtered, rank.Metric, order, rank.Limit)
	}

	return result
}
