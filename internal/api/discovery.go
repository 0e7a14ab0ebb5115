package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpdex/mcpdex/internal/contracts"
	"github.com/mcpdex/mcpdex/internal/discovery"
	"github.com/mcpdex/mcpdex/internal/domain"
)

// CapabilityQueryInput is the structured capability-matching request.
// The single-field `capability` form on DiscoveryQueryInput desugars into it.
type CapabilityQueryInput struct {
	Operator     string   `doc:"AND, OR or NOT; defaults to AND"                            json:"operator,omitempty"`
	Required     []string `doc:"Tags that drive matching"                                   json:"required,omitempty"`
	Preferred    []string `doc:"Tags that improve the score but are not required"           json:"preferred,omitempty"`
	Exclude      []string `doc:"Tags that eliminate a candidate outright"                   json:"exclude,omitempty"`
	MinimumMatch float64  `doc:"Minimum combined match score in [0,1]"                      json:"minimum_match,omitempty"`
}

// DiscoveryQueryInput is the payload for POST /discovery/query.
type DiscoveryQueryInput struct {
	Domain       string                `doc:"Exact domain lookup"                            json:"domain,omitempty"`
	Domains      []string              `doc:"Exact lookups for multiple domains"             json:"domains,omitempty"`
	Capability   string                `doc:"Sugar for a single required capability tag"     json:"capability,omitempty"`
	Capabilities *CapabilityQueryInput `doc:"Structured capability matching"                 json:"capabilities,omitempty"`
	Intent       string                `doc:"Free-text intent, e.g. 'send emails'"           json:"intent,omitempty"`
	Category     string                `doc:"Hard filter on category"                        json:"category,omitempty"`
	Keywords     []string              `doc:"Hard filter: all keywords must be present"      json:"keywords,omitempty"`
	AuthType     string                `doc:"Hard filter on auth mechanism"                  json:"auth_type,omitempty"`
	Transport    string                `doc:"Hard filter on transport type"                  json:"transport,omitempty"`
	RequiresCORS *bool                 `doc:"Hard filter on CORS support"                    json:"requires_cors,omitempty"`

	MinUptime       float64 `doc:"Minimum uptime percentage"                       json:"min_uptime,omitempty"`
	MaxResponseTime float64 `doc:"Maximum average response time in ms"             json:"max_response_time,omitempty"`
	MinTrustScore   int     `doc:"Minimum trust score"                             json:"min_trust_score,omitempty"`
	VerifiedOnly    *bool   `doc:"Defaults to true; verification is never relaxed" json:"verified_only,omitempty"`
	HealthyOnly     *bool   `doc:"Exclude unhealthy servers; defaults to true"     json:"healthy_only,omitempty"`

	SortBy string `doc:"relevance, uptime, response_time, created_at or trust_score" json:"sort_by,omitempty"`
	Limit  int    `doc:"Page size, capped at 100"                                    json:"limit,omitempty"`
	Offset int    `doc:"Offset into the ordered result sequence"                     json:"offset,omitempty"`
}

// DiscoveryQueryRequest wraps the discovery query payload.
type DiscoveryQueryRequest struct {
	Body DiscoveryQueryInput
}

// DiscoveredServer is a server record annotated with its query scores.
type DiscoveredServer struct {
	domain.ServerRecord
	MatchScore float64 `json:"match_score"`
	FinalScore float64 `json:"final_score"`
}

// DiscoveryQueryResponse is the response for POST /discovery/query.
type DiscoveryQueryResponse struct {
	Body struct {
		Servers      []DiscoveredServer  `doc:"Ranked, paginated matches"                json:"servers"`
		TotalResults int                 `doc:"Match count before pagination"            json:"total_results"`
		QueryEcho    DiscoveryQueryInput `doc:"The query these results were derived from" json:"query_echo"`
	}
}

// RegisterDiscoveryRoutes sets up discovery API endpoint routes.
func RegisterDiscoveryRoutes(routerAPI huma.API, searcher contracts.ServerSearcher, apiPathPrefix string) {
	discoveryAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Discovery"}

	huma.Register(
		discoveryAPI,
		huma.Operation{
			OperationID: "queryServers",
			Method:      http.MethodPost,
			Path:        "/query",
			Summary:     "Find servers by domain, capability or intent",
			Tags:        tags,
		},
		func(ctx context.Context, input *DiscoveryQueryRequest) (*DiscoveryQueryResponse, error) {
			return handleDiscoveryQuery(ctx, searcher, input.Body)
		},
	)
}

func handleDiscoveryQuery(
	ctx context.Context,
	searcher contracts.ServerSearcher,
	input DiscoveryQueryInput,
) (*DiscoveryQueryResponse, error) {
	result, err := searcher.Search(ctx, toDomainQuery(input))
	if err != nil {
		return nil, err
	}

	servers := make([]DiscoveredServer, 0, len(result.Servers))
	for _, s := range result.Servers {
		servers = append(servers, DiscoveredServer{
			ServerRecord: s.ServerRecord,
			MatchScore:   s.MatchScore,
			FinalScore:   s.FinalScore,
		})
	}

	resp := &DiscoveryQueryResponse{}
	resp.Body.Servers = servers
	resp.Body.TotalResults = result.TotalResults
	resp.Body.QueryEcho = input

	return resp, nil
}

func toDomainQuery(input DiscoveryQueryInput) discovery.Query {
	q := discovery.Query{
		Domain:          input.Domain,
		Domains:         input.Domains,
		Capability:      input.Capability,
		Intent:          input.Intent,
		Category:        input.Category,
		Keywords:        input.Keywords,
		AuthType:        input.AuthType,
		Transport:       input.Transport,
		RequiresCORS:    input.RequiresCORS,
		MinUptime:       input.MinUptime,
		MaxResponseTime: input.MaxResponseTime,
		MinTrustScore:   input.MinTrustScore,
		VerifiedOnly:    input.VerifiedOnly,
		HealthyOnly:     input.HealthyOnly,
		SortBy:          discovery.SortBy(input.SortBy),
		Limit:           input.Limit,
		Offset:          input.Offset,
	}
	if input.Capabilities != nil {
		q.Capabilities = &discovery.CapabilityQuery{
			Operator:     discovery.CapabilityOperator(input.Capabilities.Operator),
			Required:     input.Capabilities.Required,
			Preferred:    input.Capabilities.Preferred,
			Exclude:      input.Capabilities.Exclude,
			MinimumMatch: input.Capabilities.MinimumMatch,
		}
	}
	return q
}
