// Package discovery implements the read-only matching engine: it filters a
// store snapshot by eligibility, scores candidates against the query and
// returns a ranked, paginated result set. It never mutates state.
package discovery

import (
	"cmp"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/filter"
	"github.com/mcpdex/mcpdex/internal/store"
)

// ScoredServer is a server record annotated with its query scores.
type ScoredServer struct {
	domain.ServerRecord

	// MatchScore reflects capability/intent relevance in [0, 1].
	// Exact domain lookups carry 1.0.
	MatchScore float64

	// FinalScore is the ranking score combining match, trust and uptime.
	FinalScore float64
}

// Result is a ranked, paginated discovery response. An empty result set is
// not an error. TotalResults counts all matches before pagination.
type Result struct {
	Servers      []ScoredServer
	TotalResults int
	QueryEcho    Query
}

// Engine executes discovery queries against the record store.
// NewEngine should be used to create instances of Engine.
type Engine struct {
	logger          hclog.Logger
	store           store.Store
	preferredWeight float64
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithPreferredWeight tunes how much a preferred-tag hit counts relative to a
// required-tag hit.
func WithPreferredWeight(w float64) Option {
	return func(e *Engine) error {
		if w <= 0 || w > 1 {
			return fmt.Errorf("preferred weight must be within (0, 1], got %v", w)
		}
		e.preferredWeight = w
		return nil
	}
}

// NewEngine creates a discovery engine backed by the given store.
func NewEngine(logger hclog.Logger, s store.Store, opt ...Option) (*Engine, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if s == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	e := &Engine{
		logger:          logger.Named("discovery"),
		store:           s,
		preferredWeight: DefaultPreferredWeight,
	}
	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Search resolves a discovery query. Exact domain dimensions take priority
// over capability/intent matching, which takes priority over plain filtered
// listing. Given an unchanged store snapshot and identical parameters, the
// ordered output is identical across calls.
func (e *Engine) Search(ctx context.Context, q Query) (*Result, error) {
	n, err := q.normalize()
	if err != nil {
		return nil, err
	}

	if len(n.domains) > 0 {
		return e.searchExact(ctx, n)
	}
	return e.searchMatch(ctx, n)
}

// searchExact performs direct key lookups; matches bypass scoring and carry
// score 1.0. Unknown domains simply contribute nothing.
func (e *Engine) searchExact(ctx context.Context, n normalized) (*Result, error) {
	matches := make([]ScoredServer, 0, len(n.domains))

	for _, dom := range dedupe(n.domains) {
		raw, err := e.store.Get(ctx, store.CollectionServers, dom)
		if err != nil {
			if stdErrors.Is(err, store.ErrKeyNotFound) {
				continue
			}
			return nil, err
		}

		var rec domain.ServerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			e.logger.Warn("Skipping undecodable server record", "domain", dom, "error", err)
			continue
		}
		if !rec.DiscoveryEligible(!n.healthyOnly) {
			continue
		}

		matches = append(matches, ScoredServer{ServerRecord: rec, MatchScore: 1, FinalScore: 1})
	}

	slices.SortStableFunc(matches, func(a, b ScoredServer) int {
		return strings.Compare(a.Domain, b.Domain)
	})

	return e.page(matches, n), nil
}

// searchMatch filters and scores the full store snapshot.
func (e *Engine) searchMatch(ctx context.Context, n normalized) (*Result, error) {
	snapshot, err := e.store.GetAll(ctx, store.CollectionServers)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot server records: %w", err)
	}

	caps := n.capabilities
	intentTags, fallbackTokens := resolveIntent(n.intent)
	if len(intentTags) > 0 {
		if caps.empty() {
			caps = CapabilityQuery{Operator: OperatorOr, Required: intentTags}
		} else {
			caps.Preferred = append(caps.Preferred, intentTags...)
		}
	}

	matcherOpts := recordMatchers(e.logger)
	candidates := make([]ScoredServer, 0, len(snapshot))

	for dom, raw := range snapshot {
		// Scoring is CPU-bound over a possibly large candidate set; honor the
		// request deadline between candidates.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var rec domain.ServerRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			e.logger.Warn("Skipping undecodable server record", "domain", dom, "error", err)
			continue
		}

		if !rec.DiscoveryEligible(!n.healthyOnly) {
			continue
		}
		if !passesPerformance(rec, n.query) {
			continue
		}

		ok, err := filter.Match(rec, n.filters, matcherOpts...)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		matchScore := 1.0
		scored := false
		if !caps.empty() {
			s, keep := matchCapabilities(rec.Capabilities.Tags, caps, e.preferredWeight)
			if !keep {
				continue
			}
			matchScore = s
			scored = true
		}
		if len(fallbackTokens) > 0 {
			s := keywordOverlap(fallbackTokens, rec.Capabilities.Keywords)
			if s == 0 {
				continue
			}
			if scored {
				matchScore = (matchScore + s) / 2
			} else {
				matchScore = s
			}
		}

		h := rec.HealthSnapshot()
		final := 0.5*matchScore + 0.3*float64(rec.TrustScore)/100 + 0.2*h.UptimePercentage/100

		candidates = append(candidates, ScoredServer{
			ServerRecord: rec,
			MatchScore:   matchScore,
			FinalScore:   final,
		})
	}

	order(candidates, n.sortBy)
	return e.page(candidates, n), nil
}

// page applies limit/offset over the ordered sequence.
func (e *Engine) page(ordered []ScoredServer, n normalized) *Result {
	total := len(ordered)

	start := n.offset
	if start > total {
		start = total
	}
	end := start + n.limit
	if end > total {
		end = total
	}

	return &Result{
		Servers:      ordered[start:end],
		TotalResults: total,
		QueryEcho:    n.query,
	}
}

// order sorts candidates by the requested dimension, descending, with the
// domain (lexicographic, ascending) as a stable tie-break.
func order(candidates []ScoredServer, sortBy SortBy) {
	slices.SortStableFunc(candidates, func(a, b ScoredServer) int {
		if c := compareDimension(a, b, sortBy); c != 0 {
			return c
		}
		return strings.Compare(a.Domain, b.Domain)
	})
}

func compareDimension(a, b ScoredServer, sortBy SortBy) int {
	switch sortBy {
	case SortByUptime:
		return cmp.Compare(b.HealthSnapshot().UptimePercentage, a.HealthSnapshot().UptimePercentage)
	case SortByResponseTime:
		return cmp.Compare(b.HealthSnapshot().AvgResponseTimeMs, a.HealthSnapshot().AvgResponseTimeMs)
	case SortByCreatedAt:
		return b.CreatedAt.Compare(a.CreatedAt)
	case SortByTrustScore:
		return cmp.Compare(b.TrustScore, a.TrustScore)
	default:
		return cmp.Compare(b.FinalScore, a.FinalScore)
	}
}

// passesPerformance applies the hard performance filters before scoring.
// A threshold of zero means the filter is not applied.
func passesPerformance(rec domain.ServerRecord, q Query) bool {
	h := rec.HealthSnapshot()

	if q.MinUptime > 0 {
		if !h.Known() || h.UptimePercentage < q.MinUptime {
			return false
		}
	}
	if q.MaxResponseTime > 0 {
		if !h.Known() || h.AvgResponseTimeMs > q.MaxResponseTime {
			return false
		}
	}
	if q.MinTrustScore > 0 && rec.TrustScore < q.MinTrustScore {
		return false
	}
	return true
}

// recordMatchers wires the hard query filters to server record fields.
func recordMatchers(logger hclog.Logger) []filter.Option[domain.ServerRecord] {
	return []filter.Option[domain.ServerRecord]{
		filter.WithMatcher("category", filter.Equals(func(r domain.ServerRecord) string {
			return r.Capabilities.Category
		})),
		filter.WithMatcher("auth", filter.Equals(func(r domain.ServerRecord) string {
			return r.Transport.Auth
		})),
		filter.WithMatcher("transport", filter.Equals(func(r domain.ServerRecord) string {
			return r.Transport.Type
		})),
		filter.WithMatcher("cors", filter.EqualsBool(func(r domain.ServerRecord) bool {
			return r.Transport.CORSEnabled
		})),
		filter.WithMatcher("keywords", filter.HasAll(func(r domain.ServerRecord) []string {
			return r.Capabilities.Keywords
		})),
		filter.WithLogFunc[domain.ServerRecord](func(key, val string) {
			logger.Debug("Ignoring unsupported filter", "key", key, "value", val)
		}),
	}
}
