// Thermolab - IoT Thermostat Security Lab
//
// This is the main entry point for the Thermolab server. Thermolab is a
// classroom target: a small fleet of simulated thermostats behind a login,
// with three protections students switch off and on while they run
// simulated DoS and unauthorized-access attacks against it.
//
// Nothing here touches real devices or real networks beyond the HTTP API,
// the optional MQTT broker and the optional InfluxDB instance.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/thermolab/internal/api"
	"github.com/nerrad567/thermolab/internal/attack"
	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
	"github.com/nerrad567/thermolab/internal/bus"
	"github.com/nerrad567/thermolab/internal/infrastructure/config"
	"github.com/nerrad567/thermolab/internal/infrastructure/database"
	"github.com/nerrad567/thermolab/internal/infrastructure/influxdb"
	"github.com/nerrad567/thermolab/internal/infrastructure/logging"
	"github.com/nerrad567/thermolab/internal/infrastructure/mqtt"
	"github.com/nerrad567/thermolab/internal/seal"
	"github.com/nerrad567/thermolab/internal/security"
	"github.com/nerrad567/thermolab/internal/thermostat"
	"github.com/nerrad567/thermolab/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Startup order: config, logger, audit store, lab state (credentials,
// toggles, thermostats), optional MQTT and InfluxDB, then the HTTP API.
// Deferred closes unwind in reverse.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Thermolab",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Audit store
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", db.Path())

	auditRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, log.Component("audit"), audit.DefaultBufferSize)
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	go recorder.Run(recorderCtx)
	defer func() {
		stopRecorder()
		<-recorder.Done()
	}()

	// Lab state
	gate, err := auth.NewGateFromConfig(cfg.Lab.Credentials, auth.DefaultHashParams)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	gate.SetLogger(log.Component("auth"))

	panel := security.NewPanel(security.Toggles{
		ACL:             cfg.Lab.Toggles.ACL,
		LoginValidation: cfg.Lab.Toggles.LoginValidation,
		DoSProtection:   cfg.Lab.Toggles.DoSProtection,
	})

	registry := thermostat.NewRegistry()
	registry.SetLogger(log.Component("thermostat"))
	registry.Seed(cfg.Lab.SeedThermostats)

	log.Info("lab initialised",
		"users", gate.Usernames(),
		"thermostats", registry.Count(),
		"security_enabled", panel.Snapshot(),
	)

	sealer, err := seal.New(cfg.Security.Seal.HashKey, cfg.Security.Seal.BlockKey)
	if err != nil {
		return fmt.Errorf("configuring payload sealing: %w", err)
	}

	checks := map[string]api.HealthChecker{"database": db}
	deps := api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Session:   cfg.Security.Session,
		Logger:    log.Component("api"),
		Gate:      gate,
		Sessions:  auth.NewSessionManager(cfg.Security.Session.Secret, cfg.GetSessionTTL()),
		Panel:     panel,
		Registry:  registry,
		Simulator: attack.NewSimulator(),
		Audit:     recorder,
		AuditRepo: auditRepo,
		DBStats: func() api.DatabaseMetrics {
			s := db.Stats()
			return api.DatabaseMetrics{
				OpenConnections: s.OpenConnections,
				InUse:           s.InUse,
				Idle:            s.Idle,
				WaitCount:       s.WaitCount,
			}
		},
		Checks:  checks,
		Version: version,
	}

	// Message bus (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"sealed", sealer.Enabled(),
		)

		deps.Publisher = bus.NewPublisher(mqttClient, sealer)
		deps.MQTT = mqttClient
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Telemetry (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		deps.Telemetry = influxClient
		checks["influxdb"] = influxClient
	}

	// HTTP API
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Security commands arriving over MQTT flow back through the server so
	// they are audited and broadcast like HTTP updates.
	if mqttClient != nil {
		if err := bus.ListenSecurityCommands(mqttClient, sealer, panel, server.SecurityChanged); err != nil {
			return err
		}
		log.Info("listening for security commands", "topic", mqtt.Topics{}.SecurityCommand())
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// getConfigPath returns the configuration file path.
// Uses THERMOLAB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("THERMOLAB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
