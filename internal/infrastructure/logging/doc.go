// Package logging provides structured logging for Thermolab.
//
// It wraps log/slog so every component logs with the same handler and the
// same default attributes (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Component("api").Info("server started", "port", 5000)
//
// Never log passwords or session tokens. The login handler logs the
// username and outcome only.
package logging
