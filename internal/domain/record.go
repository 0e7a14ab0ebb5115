// Package domain defines the core types shared across the directory:
// server records, verification challenges and health metrics.
// It is imported by every other internal package and must stay dependency-free.
package domain

import "time"

const (
	// TransportStreamableHTTP is the default transport for remote MCP endpoints.
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
)

const (
	AuthNone   = "none"
	AuthAPIKey = "api_key"
	AuthOAuth2 = "oauth2"
)

// Capabilities describes what a registered server can do: structured tags,
// free-text keywords and a single coarse category.
type Capabilities struct {
	Tags     []string `json:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Category string   `json:"category,omitempty"`
}

// TransportInfo describes how clients reach the server's endpoint.
type TransportInfo struct {
	Type        string `json:"type,omitempty"`
	Auth        string `json:"auth,omitempty"`
	CORSEnabled bool   `json:"cors_enabled,omitempty"`
}

// Verification is the settled outcome of the DNS ownership state machine
// for the domain a record is keyed by.
type Verification struct {
	DNSVerified bool       `json:"dns_verified"`
	Method      string     `json:"method,omitempty"`
	ChallengeID string     `json:"challenge_id,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// ServerRecord is the identity and metadata for one registered service,
// keyed by domain. Records are created by challenge promotion and mutated
// in place by the health monitor; they are never hard-deleted here.
type ServerRecord struct {
	Domain       string        `json:"domain"`
	Endpoint     string        `json:"endpoint"`
	ContactEmail string        `json:"contact_email,omitempty"`
	Description  string        `json:"description,omitempty"`
	Capabilities Capabilities  `json:"capabilities"`
	Transport    TransportInfo `json:"transport"`

	// Health is nil until the first probe completes.
	Health *HealthMetrics `json:"health,omitempty"`

	Verification Verification `json:"verification"`

	// TrustScore is recomputed whenever health or verification change.
	TrustScore int `json:"trust_score"`

	// CommunityRating is an optional external signal in [0, 5].
	CommunityRating float64 `json:"community_rating,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthSnapshot returns the record's health metrics, substituting an
// unknown-status zero value when no probe has run yet.
func (r ServerRecord) HealthSnapshot() HealthMetrics {
	if r.Health != nil {
		return *r.Health
	}
	return HealthMetrics{Status: HealthStatusUnknown}
}

// DiscoveryEligible reports whether the record may appear in discovery output.
// Verification is never relaxed; includeUnhealthy relaxes only the health constraint.
func (r ServerRecord) DiscoveryEligible(includeUnhealthy bool) bool {
	if !r.Verification.DNSVerified {
		return false
	}
	if includeUnhealthy {
		return true
	}
	return r.HealthSnapshot().Status != HealthStatusUnhealthy
}
