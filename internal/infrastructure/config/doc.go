// Package config handles loading and validating Thermolab configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling (classroom defaults: all protections on)
//
// Security Considerations:
//   - The session secret signs the role carried in the session cookie; set it
//     via THERMOLAB_SESSION_SECRET rather than committing it to a file
//   - The default credential table is deliberately weak; it is lab material
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
