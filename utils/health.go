package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything whose liveness can be checked, e.g. a Mongo or Redis client wrapper.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether every dependency answered its last ping.
func (h HealthStatus) Healthy() bool {
	for _, ok := range h.Checks {
		if !ok {
			return false
		}
	}
	return true
}

// HealthMonitor keeps the latest dependency snapshot in memory.
type HealthMonitor struct {
	deps map[string]Pinger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(deps map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{deps: deps, current: HealthStatus{Checks: map[string]bool{}}}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every dependency once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]bool, len(m.deps))
	for name, dep := range m.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		checks[name] = dep.Ping(pingCtx) == nil
		cancel()
	}
	status := HealthStatus{Checks: checks, CheckedAt: time.Now()}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start checks immediately and then every interval until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
