package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/thermolab/internal/attack"
	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
	"github.com/nerrad567/thermolab/internal/infrastructure/config"
	"github.com/nerrad567/thermolab/internal/infrastructure/influxdb"
	"github.com/nerrad567/thermolab/internal/infrastructure/logging"
	"github.com/nerrad567/thermolab/internal/security"
	"github.com/nerrad567/thermolab/internal/thermostat"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// EventPublisher mirrors lab state onto the message bus.
type EventPublisher interface {
	ThermostatState(t thermostat.Thermostat) error
	ThermostatRemoved(id string) error
	Event(eventType string, data any) error
}

// Telemetry receives time-series samples.
type Telemetry interface {
	WriteAttack(s influxdb.AttackSample)
	WriteThermostat(id string, temperature int)
	WriteToggles(source string, acl, loginValidation, dosProtection bool)
}

// HealthChecker is any dependency that can report its health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionReporter reports whether a broker session is up.
type ConnectionReporter interface {
	IsConnected() bool
}

// Deps holds the dependencies of the API server. Gate, Sessions, Panel,
// Registry and Simulator are required; the rest are optional.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Session config.SessionConfig
	Logger  *logging.Logger

	Gate      *auth.Gate
	Sessions  *auth.SessionManager
	Panel     *security.Panel
	Registry  *thermostat.Registry
	Simulator *attack.Simulator

	Audit     *audit.Recorder
	AuditRepo audit.Repository
	Publisher EventPublisher
	Telemetry Telemetry
	DBStats   func() DatabaseMetrics

	// Checks are probed by GET /api/v1/health, keyed by component name.
	Checks map[string]HealthChecker
	MQTT   ConnectionReporter

	ExternalHub *Hub
	Version     string
}

// Server is the HTTP API server. Lab state (toggles, registry, simulator,
// credential gate) lives here rather than in package globals.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	sessCfg   config.SessionConfig
	logger    *logging.Logger
	gate      *auth.Gate
	sessions  *auth.SessionManager
	panel     *security.Panel
	registry  *thermostat.Registry
	simulator *attack.Simulator

	recorder  *audit.Recorder
	auditRepo audit.Repository
	publisher EventPublisher
	telemetry Telemetry
	dbStats   func() DatabaseMetrics
	checks    map[string]HealthChecker
	mqtt      ConnectionReporter

	metrics   *labMetrics
	version   string
	startTime time.Time

	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates an API server. It is not listening until Start.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	case deps.Gate == nil:
		return nil, errors.New("credential gate is required")
	case deps.Sessions == nil:
		return nil, errors.New("session manager is required")
	case deps.Panel == nil:
		return nil, errors.New("security panel is required")
	case deps.Registry == nil:
		return nil, errors.New("thermostat registry is required")
	case deps.Simulator == nil:
		return nil, errors.New("attack simulator is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		sessCfg:   deps.Session,
		logger:    deps.Logger,
		gate:      deps.Gate,
		sessions:  deps.Sessions,
		panel:     deps.Panel,
		registry:  deps.Registry,
		simulator: deps.Simulator,
		recorder:  deps.Audit,
		auditRepo: deps.AuditRepo,
		publisher: deps.Publisher,
		telemetry: deps.Telemetry,
		dbStats:   deps.DBStats,
		checks:    deps.Checks,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
	}
	s.metrics = newLabMetrics(s.registry.Count, s.recorder.Dropped)

	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	} else {
		s.hub = NewHub(s.wsCfg, s.logger)
	}

	return s, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// PrometheusRegistry exposes the server's collectors.
func (s *Server) PrometheusRegistry() *prometheus.Registry {
	return s.metrics.registry
}

// Start runs the hub and begins listening in the background.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "address", s.server.Addr, "cert", s.cfg.TLS.CertFile)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close stops background goroutines and shuts the listener down, waiting
// up to gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}
