package domain

import "time"

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// HealthStatus represents the rolled-up operational state of a registered server.
type HealthStatus string

// HealthMetrics tracks the rolling health signal for a registered server's endpoint.
type HealthMetrics struct {
	// Status is derived from UptimePercentage and ConsecutiveFailures, never set directly by callers.
	Status HealthStatus `json:"status"`

	// UptimePercentage is a decayed running average in [0, 100].
	UptimePercentage float64 `json:"uptime_percentage"`

	// AvgResponseTimeMs is an exponential moving average of probe latency.
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`

	// ConsecutiveFailures counts probe failures since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// TotalChecks counts all probes ever applied to these metrics.
	TotalChecks int `json:"total_checks"`

	// LastCheck is the time of the most recent probe, nil before the first probe.
	LastCheck *time.Time `json:"last_check,omitempty"`
}

// Known reports whether at least one probe has been applied.
func (m HealthMetrics) Known() bool {
	return m.TotalChecks > 0
}
