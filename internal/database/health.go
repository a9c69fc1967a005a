package database

import (
	"context"
	"time"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the current health of the ledger store
type HealthStatus struct {
	Status          string        `json:"status"`
	Driver          string        `json:"driver"`
	Timestamp       time.Time     `json:"timestamp"`
	ResponseTime    time.Duration `json:"response_time"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	WaitCount       int64         `json:"wait_count"`
	Errors          []string      `json:"errors,omitempty"`
}

// Health pings the store and reports pool usage. A slow ping or a pool with
// waiting callers is reported as degraded.
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Driver:    string(m.dialect),
		Timestamp: start.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if m.db == nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, "database is closed")
		return status
	}

	err := m.db.PingContext(ctx)
	status.ResponseTime = time.Since(start)

	stats := m.db.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.WaitCount = stats.WaitCount

	switch {
	case err != nil:
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
	case status.ResponseTime > time.Second:
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "slow ping")
	default:
		status.Status = StatusHealthy
	}
	return status
}
