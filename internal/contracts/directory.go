// Package contracts defines the interfaces the API surface is built against,
// decoupling route handlers from the concrete core services.
package contracts

import (
	"context"

	"github.com/mcpdex/mcpdex/internal/discovery"
	"github.com/mcpdex/mcpdex/internal/health"
	"github.com/mcpdex/mcpdex/internal/verify"
)

// DomainVerifier drives the DNS ownership state machine.
type DomainVerifier interface {
	// Initiate validates a registration request and issues a challenge.
	Initiate(ctx context.Context, req verify.RegistrationRequest) (*verify.ChallengeGrant, error)

	// CheckChallenge performs one verification attempt; safe to repeat.
	CheckChallenge(ctx context.Context, challengeID string) (*verify.ChallengeResult, error)

	// Abandon settles a pending challenge as failed.
	Abandon(ctx context.Context, challengeID string) (*verify.ChallengeResult, error)

	// Status reports a challenge's state without side effects.
	Status(ctx context.Context, challengeID string) (*verify.ChallengeResult, error)
}

// ServerSearcher resolves discovery queries to ranked result sets.
type ServerSearcher interface {
	Search(ctx context.Context, q discovery.Query) (*discovery.Result, error)
}

// HealthReader reports per-domain health metrics and trust scores.
type HealthReader interface {
	// Check returns the health for a single domain.
	Check(ctx context.Context, dom string) (*health.DomainHealth, error)

	// CheckAll returns health for each requested domain, omitting unknown domains.
	CheckAll(ctx context.Context, domains []string) ([]health.DomainHealth, error)
}

// HealthMonitor combines health reads with the probe cycle the daemon schedules.
type HealthMonitor interface {
	HealthReader

	// RunOnce probes every verified server once, bounded by the pool size.
	RunOnce(ctx context.Context) error
}
