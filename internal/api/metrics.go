package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/nerrad567/thermolab/internal/security"
)

// healthCheckTimeout bounds each dependency probe in GET /health.
const healthCheckTimeout = 2 * time.Second

// SystemMetrics is the GET /api/v1/metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Host          HostMetrics      `json:"host"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          MQTTMetrics      `json:"mqtt"`
	Thermostats   RegistryMetrics  `json:"thermostats"`
	Security      security.Toggles `json:"security_enabled"`
	Audit         AuditMetrics     `json:"audit"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// HostMetrics shows machine load, which is how students watch a DoS run
// from the outside. Fields are omitted when the host cannot report them.
type HostMetrics struct {
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`
	MemoryPercent *float64 `json:"memory_percent,omitempty"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// RegistryMetrics contains thermostat registry statistics.
type RegistryMetrics struct {
	Total int `json:"total"`
}

// AuditMetrics contains audit recorder statistics.
type AuditMetrics struct {
	Enabled bool   `json:"enabled"`
	Dropped uint64 `json:"dropped"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns system, host and lab metrics as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Host: collectHostMetrics(),
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Thermostats: RegistryMetrics{Total: s.registry.Count()},
		Security:    s.panel.Snapshot(),
		Audit: AuditMetrics{
			Enabled: s.recorder != nil,
			Dropped: s.recorder.Dropped(),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{Enabled: true, Connected: s.mqtt.IsConnected()}
	}
	if s.dbStats != nil {
		stats := s.dbStats()
		metrics.Database = &stats
	}

	writeJSON(w, http.StatusOK, metrics)
}

func collectHostMetrics() HostMetrics {
	var host HostMetrics
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		host.CPUPercent = &pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		host.MemoryPercent = &vm.UsedPercent
	}
	return host
}

// handleHealth probes each registered dependency. Any failure reports
// "degraded" with 503 so load balancers can act on it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.checks))
	status, code := "ok", http.StatusOK

	for name, checker := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
