// Package trust computes the 0-100 trust score combining verification state,
// operational health and an optional community rating.
package trust

import (
	"math"

	"github.com/mcpdex/mcpdex/internal/domain"
)

const (
	uptimeWeight       = 0.4
	latencyCeiling     = 20.0
	verificationPoints = 20.0
	communityCeiling   = 20.0

	// latencyDivisor converts avg_response_time_ms into deducted points:
	// every 50ms of average latency costs one of the 20 latency points.
	latencyDivisor = 50.0
)

// Score computes the trust score for a server. It is deterministic and
// side-effect free: the same inputs always produce the same score.
//
// Components:
//   - uptime: clamp(uptime_percentage, 0, 100) * 0.4  (max 40)
//   - latency: 20 - avg_response_time_ms/50, floored at 0  (max 20)
//   - verification: 20 if DNS-verified, else 0
//   - community: clamp(rating, 0, 5) / 5 * 20  (max 20)
//
// The sum is floored to an integer and clamped to [0, 100].
func Score(v domain.Verification, h domain.HealthMetrics, communityRating float64) int {
	uptime := clamp(h.UptimePercentage, 0, 100) * uptimeWeight

	latency := latencyCeiling - h.AvgResponseTimeMs/latencyDivisor
	latency = clamp(latency, 0, latencyCeiling)

	var verification float64
	if v.DNSVerified {
		verification = verificationPoints
	}

	community := clamp(communityRating, 0, 5) / 5 * communityCeiling

	total := int(math.Floor(uptime + latency + verification + community))
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
