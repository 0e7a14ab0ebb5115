package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpdex/mcpdex/internal/contracts"
	"github.com/mcpdex/mcpdex/internal/domain"
	"github.com/mcpdex/mcpdex/internal/verify"
)

// RegistrationInput is the payload for registering a new server domain.
type RegistrationInput struct {
	Domain       string   `doc:"Domain to register, e.g. example.com"               json:"domain"`
	Endpoint     string   `doc:"HTTPS endpoint serving the MCP service"             json:"endpoint"`
	ContactEmail string   `doc:"Operator contact address"                           json:"contact_email"`
	Capabilities []string `doc:"Capability tags the server exposes"                 json:"capabilities,omitempty"`
	Category     string   `doc:"Coarse category, e.g. productivity"                 json:"category,omitempty"`
	Description  string   `doc:"Free-text description, also mined for keywords"     json:"description,omitempty"`
	Transport    string   `doc:"Transport type, e.g. streamable-http"               json:"transport,omitempty"`
	Auth         string   `doc:"Auth mechanism: none, api_key or oauth2"            json:"auth,omitempty"`
	CORSEnabled  bool     `doc:"Whether the endpoint serves CORS headers"           json:"cors_enabled,omitempty"`
}

// RegisterServerRequest wraps the registration payload.
type RegisterServerRequest struct {
	Body RegistrationInput
}

// ChallengeGrant tells the operator which TXT record to publish.
type ChallengeGrant struct {
	ChallengeID    string    `doc:"Opaque challenge identifier"                json:"challenge_id"`
	TXTRecordName  string    `doc:"DNS record name to create"                  json:"txt_record_name"`
	TXTRecordValue string    `doc:"Token the TXT record value must contain"    json:"txt_record_value"`
	ExpiresAt      time.Time `doc:"Challenge expiry (24h after issuance)"      json:"expires_at"`
}

// ChallengeGrantResponse is the response for POST /servers.
type ChallengeGrantResponse struct {
	Status int
	Body   ChallengeGrant
}

// ChallengeRequest identifies a challenge by ID.
type ChallengeRequest struct {
	ChallengeID string `doc:"Challenge identifier" path:"id"`
}

// ChallengeStatus reports the state of a challenge.
type ChallengeStatus struct {
	Domain      string                 `json:"domain"`
	ChallengeID string                 `json:"challenge_id"`
	Status      domain.ChallengeStatus `json:"status"`
	VerifiedAt  *time.Time             `json:"verified_at,omitempty"`
}

// ChallengeStatusResponse wraps a ChallengeStatus.
type ChallengeStatusResponse struct {
	Body ChallengeStatus
}

// RegisterServerRoutes sets up registration and challenge API endpoint routes.
func RegisterServerRoutes(routerAPI huma.API, verifier contracts.DomainVerifier, apiPathPrefix string) {
	serverAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Registration"}

	huma.Register(
		serverAPI,
		huma.Operation{
			OperationID:   "registerServer",
			Method:        http.MethodPost,
			Path:          "/servers",
			Summary:       "Register a server domain and receive a DNS verification challenge",
			Tags:          tags,
			DefaultStatus: http.StatusCreated,
		},
		func(ctx context.Context, input *RegisterServerRequest) (*ChallengeGrantResponse, error) {
			return handleRegisterServer(ctx, verifier, input.Body)
		},
	)

	huma.Register(
		serverAPI,
		huma.Operation{
			OperationID: "getChallengeStatus",
			Method:      http.MethodGet,
			Path:        "/challenges/{id}",
			Summary:     "Get the status of a verification challenge",
			Tags:        tags,
		},
		func(ctx context.Context, input *ChallengeRequest) (*ChallengeStatusResponse, error) {
			result, err := verifier.Status(ctx, input.ChallengeID)
			if err != nil {
				return nil, err
			}
			return challengeResponse(result), nil
		},
	)

	huma.Register(
		serverAPI,
		huma.Operation{
			OperationID: "checkChallenge",
			Method:      http.MethodPost,
			Path:        "/challenges/{id}/check",
			Summary:     "Attempt DNS verification for a pending challenge",
			Tags:        tags,
		},
		func(ctx context.Context, input *ChallengeRequest) (*ChallengeStatusResponse, error) {
			result, err := verifier.CheckChallenge(ctx, input.ChallengeID)
			if err != nil {
				return nil, err
			}
			return challengeResponse(result), nil
		},
	)

	huma.Register(
		serverAPI,
		huma.Operation{
			OperationID: "abandonChallenge",
			Method:      http.MethodDelete,
			Path:        "/challenges/{id}",
			Summary:     "Abandon a pending challenge, settling it as failed",
			Tags:        tags,
		},
		func(ctx context.Context, input *ChallengeRequest) (*ChallengeStatusResponse, error) {
			result, err := verifier.Abandon(ctx, input.ChallengeID)
			if err != nil {
				return nil, err
			}
			return challengeResponse(result), nil
		},
	)
}

func handleRegisterServer(
	ctx context.Context,
	verifier contracts.DomainVerifier,
	input RegistrationInput,
) (*ChallengeGrantResponse, error) {
	grant, err := verifier.Initiate(ctx, verify.RegistrationRequest{
		Domain:       input.Domain,
		Endpoint:     input.Endpoint,
		ContactEmail: input.ContactEmail,
		Capabilities: input.Capabilities,
		Category:     input.Category,
		Description:  input.Description,
		Transport: domain.TransportInfo{
			Type:        input.Transport,
			Auth:        input.Auth,
			CORSEnabled: input.CORSEnabled,
		},
	})
	if err != nil {
		return nil, err
	}

	return &ChallengeGrantResponse{
		Status: http.StatusCreated,
		Body: ChallengeGrant{
			ChallengeID:    grant.ChallengeID,
			TXTRecordName:  grant.TXTRecordName,
			TXTRecordValue: grant.TXTRecordValue,
			ExpiresAt:      grant.ExpiresAt,
		},
	}, nil
}

func challengeResponse(result *verify.ChallengeResult) *ChallengeStatusResponse {
	resp := &ChallengeStatusResponse{}
	resp.Body = ChallengeStatus{
		Domain:      result.Domain,
		ChallengeID: result.ChallengeID,
		Status:      result.Status,
		VerifiedAt:  result.VerifiedAt,
	}
	return resp
}
