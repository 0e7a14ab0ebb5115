package trust

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpdex/mcpdex/internal/domain"
)

func TestScore(t *testing.T) {
	t.Parallel()

	verified := domain.Verification{DNSVerified: true}
	unverified := domain.Verification{}

	tests := []struct {
		name      string
		v         domain.Verification
		h         domain.HealthMetrics
		community float64
		want      int
	}{
		{
			name: "perfect server",
			v:    verified,
			h: domain.HealthMetrics{
				UptimePercentage:  100,
				AvgResponseTimeMs: 0,
			},
			community: 5,
			want:      100,
		},
		{
			name:      "verified with no probes yet",
			v:         verified,
			h:         domain.HealthMetrics{},
			community: 0,
			want:      40, // 20 verification + 20 latency (no latency measured)
		},
		{
			name:      "unverified zero record",
			v:         unverified,
			h:         domain.HealthMetrics{},
			community: 0,
			want:      20, // latency points only
		},
		{
			name: "latency eats into the latency points",
			v:    verified,
			h: domain.HealthMetrics{
				UptimePercentage:  100,
				AvgResponseTimeMs: 500, // costs 10 of the 20 latency points
			},
			community: 0,
			want:      70,
		},
		{
			name: "latency points floor at zero",
			v:    verified,
			h: domain.HealthMetrics{
				UptimePercentage:  100,
				AvgResponseTimeMs: 5000,
			},
			community: 0,
			want:      60,
		},
		{
			name: "community rating clamps to five",
			v:    verified,
			h: domain.HealthMetrics{
				UptimePercentage: 100,
			},
			community: 9,
			want:      100,
		},
		{
			name: "fractional sum floors",
			v:    verified,
			h: domain.HealthMetrics{
				UptimePercentage:  99.9, // 39.96 uptime points
				AvgResponseTimeMs: 25,   // 19.5 latency points
			},
			community: 0,
			want:      79, // floor(39.96 + 19.5 + 20)
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Score(tc.v, tc.h, tc.community))
		})
	}
}

func TestScoreMonotonicInUptime(t *testing.T) {
	t.Parallel()

	v := domain.Verification{DNSVerified: true}
	prev := -1
	for uptime := 0.0; uptime <= 100; uptime += 10 {
		got := Score(v, domain.HealthMetrics{UptimePercentage: uptime, AvgResponseTimeMs: 100}, 0)
		require.GreaterOrEqual(t, got, prev, "score must not decrease as uptime rises")
		prev = got
	}
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	v := domain.Verification{DNSVerified: true}
	h := domain.HealthMetrics{UptimePercentage: 97.3, AvgResponseTimeMs: 123.4}

	first := Score(v, h, 3.5)
	for range 10 {
		require.Equal(t, first, Score(v, h, 3.5))
	}
}
