// Package database provides the SQLite connection backing Thermolab's
// audit trail.
//
// The thermostat registry and security toggles are deliberately in memory;
// only audit records are persisted.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are pairs of YYYYMMDD_HHMMSS_name.up.sql / .down.sql files at
// the root of the fs.FS handed to Migrate.
package database
