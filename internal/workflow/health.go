package workflow

import (
	"context"

	"wemscribe/internal/stage"
)

// HealthChecks runs every stage's health probe and returns the results in
// pipeline order. Callers decide whether an unhealthy stage blocks the run.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, st := range m.stages {
		if st.handler == nil {
			checks = append(checks, stage.Unhealthy(st.name, "handler missing"))
			continue
		}
		checks = append(checks, st.handler.HealthCheck(ctx))
	}
	return checks
}
