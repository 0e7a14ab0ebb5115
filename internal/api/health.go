package api

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpdex/mcpdex/internal/contracts"
	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/health"
)

// DomainHealth is the API shape for one domain's health and trust signal.
type DomainHealth struct {
	Domain     string               `json:"domain"`
	Health     domain.HealthMetrics `json:"health"`
	TrustScore int                  `json:"trust_score"`
}

// DomainHealthRequest identifies a single domain.
type DomainHealthRequest struct {
	Domain string `doc:"Domain to check" example:"example.com" path:"domain"`
}

// DomainHealthResponse wraps a single DomainHealth.
type DomainHealthResponse struct {
	Body DomainHealth
}

// BatchHealthRequest asks for health across several domains at once.
type BatchHealthRequest struct {
	Body struct {
		Domains []string `doc:"Domains to check; unknown domains are omitted from the response" json:"domains"`
	}
}

// BatchHealthResponse wraps the per-domain results.
type BatchHealthResponse struct {
	Body struct {
		Servers []DomainHealth `doc:"Health and trust score per known domain" json:"servers"`
	}
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, reader contracts.HealthReader, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getDomainHealth",
			Method:      http.MethodGet,
			Path:        "/servers/{domain}",
			Summary:     "Get health metrics and trust score for a domain",
			Tags:        tags,
		},
		func(ctx context.Context, input *DomainHealthRequest) (*DomainHealthResponse, error) {
			dh, err := reader.Check(ctx, input.Domain)
			if err != nil {
				return nil, err
			}

			resp := &DomainHealthResponse{}
			resp.Body = toAPIHealth(*dh)
			return resp, nil
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getDomainsHealth",
			Method:      http.MethodPost,
			Path:        "/servers",
			Summary:     "Get health metrics and trust scores for multiple domains",
			Tags:        tags,
		},
		func(ctx context.Context, input *BatchHealthRequest) (*BatchHealthResponse, error) {
			results, err := reader.CheckAll(ctx, input.Body.Domains)
			if err != nil {
				return nil, err
			}

			servers := make([]DomainHealth, 0, len(results))
			for _, dh := range results {
				servers = append(servers, toAPIHealth(dh))
			}
			slices.SortFunc(servers, func(a, b DomainHealth) int {
				return strings.Compare(a.Domain, b.Domain)
			})

			resp := &BatchHealthResponse{}
			resp.Body.Servers = servers
			return resp, nil
		},
	)
}

func toAPIHealth(dh health.DomainHealth) DomainHealth {
	return DomainHealth{
		Domain:     dh.Domain,
		Health:     dh.Metrics,
		TrustScore: dh.TrustScore,
	}
}
