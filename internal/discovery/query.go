package discovery

import (
	"fmt"
	"strings"

	"github.com/mcpdex/mcpdex/internal/errors"
	"github.com/mcpdex/mcpdex/internal/filter"
)

const (
	OperatorAnd CapabilityOperator = "AND"
	OperatorOr  CapabilityOperator = "OR"
	OperatorNot CapabilityOperator = "NOT"
)

// CapabilityOperator controls how required tags are combined.
type CapabilityOperator string

const (
	SortByRelevance    SortBy = "relevance"
	SortByUptime       SortBy = "uptime"
	SortByResponseTime SortBy = "response_time"
	SortByCreatedAt    SortBy = "created_at"
	SortByTrustScore   SortBy = "trust_score"
)

// SortBy selects the ordering dimension for results.
type SortBy string

const (
	// DefaultLimit is applied when a query does not specify a page size.
	DefaultLimit = 20

	// MaxLimit caps the page size of a single query.
	MaxLimit = 100
)

// CapabilityQuery is the canonical structured capability-matching request.
// Simpler single-field query forms desugar into it.
type CapabilityQuery struct {
	Operator     CapabilityOperator
	Required     []string
	Preferred    []string
	Exclude      []string
	MinimumMatch float64
}

func (c CapabilityQuery) empty() bool {
	return len(c.Required) == 0 && len(c.Preferred) == 0 && len(c.Exclude) == 0
}

// Query is a structured discovery request. All dimensions are optional but at
// least one must be present. Dimension priority when several are combined:
// exact domain lookup, then capability/intent matching, then category listing.
type Query struct {
	// Exact lookups; bypass scoring.
	Domain  string
	Domains []string

	// Capability is sugar for a single required tag.
	Capability   string
	Capabilities *CapabilityQuery

	// Intent is free text resolved against the intent lexicon.
	Intent string

	// Hard (pass/fail) filters.
	Category     string
	Keywords     []string
	AuthType     string
	Transport    string
	RequiresCORS *bool

	// Performance filters, applied before scoring.
	MinUptime       float64
	MaxResponseTime float64
	MinTrustScore   int

	// HealthyOnly excludes unhealthy servers; defaults to true.
	// VerifiedOnly defaults to true and cannot actually be relaxed:
	// unverified records are never discoverable.
	VerifiedOnly *bool
	HealthyOnly  *bool

	SortBy SortBy
	Limit  int
	Offset int
}

// normalized is the internal, desugared form of a Query.
type normalized struct {
	domains      []string
	capabilities CapabilityQuery
	intent       string
	filters      map[string]string
	query        Query
	healthyOnly  bool
	sortBy       SortBy
	limit        int
	offset       int
}

// normalize validates the query and desugars the simpler request forms into
// the canonical structured one.
func (q Query) normalize() (normalized, error) {
	n := normalized{
		intent:  filter.NormalizeString(q.Intent),
		filters: make(map[string]string),
		query:   q,
		sortBy:  q.SortBy,
		limit:   q.Limit,
		offset:  q.Offset,
	}

	if q.Domain != "" {
		n.domains = append(n.domains, filter.NormalizeString(q.Domain))
	}
	for _, d := range q.Domains {
		n.domains = append(n.domains, filter.NormalizeString(d))
	}

	caps := CapabilityQuery{Operator: OperatorAnd}
	if q.Capabilities != nil {
		caps = *q.Capabilities
		if caps.Operator == "" {
			caps.Operator = OperatorAnd
		}
	}
	if q.Capability != "" {
		caps.Required = append(caps.Required, q.Capability)
	}
	caps.Required = filter.NormalizeSlice(caps.Required)
	caps.Preferred = filter.NormalizeSlice(caps.Preferred)
	caps.Exclude = filter.NormalizeSlice(caps.Exclude)
	n.capabilities = caps

	switch caps.Operator {
	case OperatorAnd, OperatorOr, OperatorNot:
	default:
		return normalized{}, fmt.Errorf("%w: unknown capability operator '%s'", errors.ErrInvalidQuery, caps.Operator)
	}
	if caps.MinimumMatch < 0 || caps.MinimumMatch > 1 {
		return normalized{}, fmt.Errorf("%w: minimum_match must be within [0, 1]", errors.ErrInvalidQuery)
	}

	if q.Category != "" {
		n.filters["category"] = q.Category
	}
	if q.AuthType != "" {
		n.filters["auth"] = q.AuthType
	}
	if q.Transport != "" {
		n.filters["transport"] = q.Transport
	}
	if q.RequiresCORS != nil {
		n.filters["cors"] = fmt.Sprintf("%t", *q.RequiresCORS)
	}
	if len(q.Keywords) > 0 {
		n.filters["keywords"] = strings.Join(filter.NormalizeSlice(q.Keywords), ",")
	}

	if q.MinUptime < 0 || q.MinUptime > 100 {
		return normalized{}, fmt.Errorf("%w: min_uptime must be within [0, 100]", errors.ErrInvalidQuery)
	}
	if q.MaxResponseTime < 0 {
		return normalized{}, fmt.Errorf("%w: max_response_time cannot be negative", errors.ErrInvalidQuery)
	}
	if q.MinTrustScore < 0 || q.MinTrustScore > 100 {
		return normalized{}, fmt.Errorf("%w: min_trust_score must be within [0, 100]", errors.ErrInvalidQuery)
	}

	n.healthyOnly = q.HealthyOnly == nil || *q.HealthyOnly

	switch n.sortBy {
	case "":
		n.sortBy = SortByRelevance
	case SortByRelevance, SortByUptime, SortByResponseTime, SortByCreatedAt, SortByTrustScore:
	default:
		return normalized{}, fmt.Errorf("%w: unknown sort_by '%s'", errors.ErrInvalidQuery, n.sortBy)
	}

	if n.limit < 0 || n.offset < 0 {
		return normalized{}, fmt.Errorf("%w: limit and offset cannot be negative", errors.ErrInvalidQuery)
	}
	if n.limit == 0 {
		n.limit = DefaultLimit
	}
	if n.limit > MaxLimit {
		n.limit = MaxLimit
	}

	if len(n.domains) == 0 && caps.empty() && n.intent == "" && len(n.filters) == 0 {
		return normalized{}, fmt.Errorf("%w: at least one query dimension is required", errors.ErrInvalidQuery)
	}

	return n, nil
}
