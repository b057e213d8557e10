package health

import (
	"context"
	"os/exec"
)

// Status levels for a health check.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// Check is one component's health report.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Pinger is anything that can report backing-store reachability.
type Pinger interface {
	Health(ctx context.Context) error
}

// Monitor aggregates component health. The primary store and the retrieval
// tool are load-bearing; the secondary store only degrades caching.
type Monitor struct {
	db        Pinger
	secondary Pinger
	toolPath  string
}

// NewMonitor creates a monitor. db and secondary may be nil when the
// corresponding store is not configured.
func NewMonitor(db, secondary Pinger, toolPath string) *Monitor {
	return &Monitor{db: db, secondary: secondary, toolPath: toolPath}
}

// CheckHealth runs all component checks.
func (m *Monitor) CheckHealth(ctx context.Context) []Check {
	checks := make([]Check, 0, 3)

	switch {
	case m.db == nil:
		checks = append(checks, Check{
			Name: "database", Status: StatusDegraded, Detail: "not configured",
		})
	default:
		if err := m.db.Health(ctx); err != nil {
			checks = append(checks, Check{
				Name: "database", Status: StatusCritical, Detail: err.Error(),
			})
		} else {
			checks = append(checks, Check{Name: "database", Status: StatusHealthy})
		}
	}

	switch {
	case m.secondary == nil:
		checks = append(checks, Check{
			Name: "secondary_store", Status: StatusDegraded, Detail: "in-process fallback",
		})
	default:
		if err := m.secondary.Health(ctx); err != nil {
			checks = append(checks, Check{
				Name: "secondary_store", Status: StatusDegraded, Detail: err.Error(),
			})
		} else {
			checks = append(checks, Check{Name: "secondary_store", Status: StatusHealthy})
		}
	}

	if _, err := exec.LookPath(m.toolPath); err != nil {
		checks = append(checks, Check{
			Name: "retrieval_tool", Status: StatusCritical, Detail: err.Error(),
		})
	} else {
		checks = append(checks, Check{Name: "retrieval_tool", Status: StatusHealthy})
	}

	return checks
}
