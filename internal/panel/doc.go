// Package panel serves the lab console, a single HTML page with plain
// JavaScript that drives the /api/v1 endpoints.
//
// The assets are embedded with go:embed so the binary needs nothing on
// disk. During UI work a directory can be passed to Handler instead and
// edits show up on reload without a rebuild.
package panel
