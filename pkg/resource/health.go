// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-orrery/pkg/health"
)

// goroutineHeadroom is the share of the goroutine budget that may be in
// use before readiness fails.
const goroutineHeadroom = 0.8

// HealthCheck reports unhealthy when background work outgrows the
// manager's memory or goroutine budget.
func (m *Manager) HealthCheck() health.Check {
	return health.CheckFunc("resource", func(context.Context) error {
		stats := m.Stats()
		if stats.MemoryUsageMB > stats.MaxMemoryMB {
			return fmt.Errorf("memory usage %dMB exceeds limit %dMB",
				stats.MemoryUsageMB, stats.MaxMemoryMB)
		}
		if limit := int64(float64(stats.MaxGoroutines) * goroutineHeadroom); stats.Goroutines > limit {
			return fmt.Errorf("%d background tasks running, limit %d of %d",
				stats.Goroutines, limit, stats.MaxGoroutines)
		}
		return nil
	})
}

// HealthCheck reports unhealthy while the circuit is open. Bodies keep
// their placeholder tints meanwhile, so only readiness is affected.
func (b *Breaker) HealthCheck() health.Check {
	return health.CheckFunc(b.cb.Name(), func(context.Context) error {
		if b.State() != gobreaker.StateOpen {
			return nil
		}
		return fmt.Errorf("circuit open after %d consecutive failures",
			b.Counts().ConsecutiveFailures)
	})
}
