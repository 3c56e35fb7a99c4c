package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Thermolab.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Lab       LabConfig       `yaml:"lab"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// LabConfig describes the initial state of the lab: which protections start
// enabled, how many thermostats exist at boot and who can log in.
type LabConfig struct {
	Toggles         TogglesConfig      `yaml:"toggles"`
	SeedThermostats int                `yaml:"seed_thermostats"`
	Credentials     []CredentialConfig `yaml:"credentials"`
}

// TogglesConfig holds the boot-time value of each security protection.
type TogglesConfig struct {
	ACL             bool `yaml:"acl"`
	LoginValidation bool `yaml:"login_validation"`
	DoSProtection   bool `yaml:"dos_protection"`
}

// CredentialConfig is one row of the static credential table.
// Passwords are hashed at startup and the plaintext is discarded.
type CredentialConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// DatabaseConfig contains SQLite settings for the audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// PanelDir serves the console from disk instead of the embedded copy.
	PanelDir string `yaml:"panel_dir"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
// Write must stay above the longest simulated DoS delay.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains session and payload sealing settings.
type SecurityConfig struct {
	Session SessionConfig `yaml:"session"`
	Seal    SealConfig    `yaml:"seal"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	TTL        int    `yaml:"ttl"` // minutes
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
}

// SealConfig holds the keys used to seal MQTT event payloads.
// Sealing is off when HashKey is empty.
type SealConfig struct {
	HashKey  string `yaml:"hash_key"`
	BlockKey string `yaml:"block_key"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: THERMOLAB_SECTION_KEY
// For example: THERMOLAB_DATABASE_PATH, THERMOLAB_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading a file.
// Callers must still supply a session secret before Validate passes.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with the classroom defaults: every
// protection on, one seeded thermostat, an admin and an attacker account.
func defaultConfig() *Config {
	return &Config{
		Lab: LabConfig{
			Toggles: TogglesConfig{
				ACL:             true,
				LoginValidation: true,
				DoSProtection:   true,
			},
			SeedThermostats: 1,
			Credentials: []CredentialConfig{
				{Username: "user1", Password: "password123", Role: "admin"},
				{Username: "attacker", Password: "hackerpass", Role: "unauthorized"},
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/thermolab.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "thermolab",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			Session: SessionConfig{
				TTL:        60,
				CookieName: "thermolab_session",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: THERMOLAB_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("THERMOLAB_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("THERMOLAB_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("THERMOLAB_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("THERMOLAB_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("THERMOLAB_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("THERMOLAB_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("THERMOLAB_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security
	if v := os.Getenv("THERMOLAB_SESSION_SECRET"); v != "" {
		cfg.Security.Session.Secret = v
	}
	if v := os.Getenv("THERMOLAB_SEAL_HASH_KEY"); v != "" {
		cfg.Security.Seal.HashKey = v
	}
	if v := os.Getenv("THERMOLAB_SEAL_BLOCK_KEY"); v != "" {
		cfg.Security.Seal.BlockKey = v
	}
}

// validRoles are the roles a configured credential may carry.
var validRoles = map[string]bool{"admin": true, "unauthorized": true}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Lab.SeedThermostats < 0 {
		errs = append(errs, "lab.seed_thermostats cannot be negative")
	}

	seen := make(map[string]bool, len(c.Lab.Credentials))
	for i, cred := range c.Lab.Credentials {
		switch {
		case cred.Username == "":
			errs = append(errs, fmt.Sprintf("lab.credentials[%d].username is required", i))
		case seen[cred.Username]:
			errs = append(errs, fmt.Sprintf("lab.credentials[%d].username %q is duplicated", i, cred.Username))
		}
		seen[cred.Username] = true
		if !validRoles[cred.Role] {
			errs = append(errs, fmt.Sprintf("lab.credentials[%d].role must be admin or unauthorized", i))
		}
	}

	// A forged session cookie grants admin, so the secret must not be guessable.
	const minSessionSecretLength = 32
	if c.Security.Session.Secret == "" {
		errs = append(errs, "security.session.secret is required (set THERMOLAB_SESSION_SECRET environment variable)")
	} else if len(c.Security.Session.Secret) < minSessionSecretLength {
		errs = append(errs, "security.session.secret must be at least 32 characters")
	}

	if c.Security.Session.CookieName == "" {
		errs = append(errs, "security.session.cookie_name is required")
	}

	if c.Security.Seal.HashKey != "" && len(c.Security.Seal.HashKey) < minSessionSecretLength {
		errs = append(errs, "security.seal.hash_key must be at least 32 characters")
	}
	switch len(c.Security.Seal.BlockKey) {
	case 0, 16, 24, 32: //nolint:mnd // AES-128, AES-192, AES-256
	default:
		errs = append(errs, "security.seal.block_key must be 16, 24, or 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSessionTTL returns the session lifetime as a Duration.
func (c *Config) GetSessionTTL() time.Duration {
	return time.Duration(c.Security.Session.TTL) * time.Minute
}
