// Package migrations embeds the audit schema so the binary carries its own
// SQL and needs nothing on disk.
package migrations

import "embed"

// FS holds every *.sql file in this directory, at the root of the FS.
//
//go:embed *.sql
var FS embed.FS
