package pipeline

import (
	"context"
	"time"
)

// Checker is a probeable external capability
type Checker interface {
	Name() string
	Health(ctx context.Context) error
}

// HealthStatus is the aggregated service state
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// CapabilityHealth reports one capability's probe outcome
type CapabilityHealth struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HealthReport is the full health snapshot
type HealthReport struct {
	Status       HealthStatus       `json:"status"`
	Capabilities []CapabilityHealth `json:"capabilities"`
	CheckedAt    time.Time          `json:"checked_at"`
}

const probeTimeout = 5 * time.Second

// CheckHealth probes each capability and aggregates: all passing is
// healthy, all failing is unhealthy, anything in between is degraded.
// No checkers configured counts as healthy.
func CheckHealth(ctx context.Context, checkers []Checker) HealthReport {
	report := HealthReport{CheckedAt: time.Now()}

	failed := 0
	for _, c := range checkers {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := c.Health(probeCtx)
		cancel()

		ch := CapabilityHealth{Name: c.Name(), OK: err == nil}
		if err != nil {
			ch.Error = err.Error()
			failed++
		}
		report.Capabilities = append(report.Capabilities, ch)
	}

	switch {
	case failed == 0:
		report.Status = StatusHealthy
	case failed == len(checkers):
		report.Status = StatusUnhealthy
	default:
		report.Status = StatusDegraded
	}
	return report
}
