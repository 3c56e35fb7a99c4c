// Package api provides the HTTP API and WebSocket server for Thermolab.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// # HTTP surface
//
// All routes live under /api/v1 and answer with a JSON envelope:
//
//	{"success": true, ...}
//	{"success": false, "code": "not_found", "message": "Thermostat ID not found."}
//
// Simulated attacks that are blocked or dropped are results, not errors:
// they answer 200 with success false.
//
// Sessions ride in an HttpOnly cookie holding a signed JWT. Requests without
// a valid cookie run with no session, which the thermostat registry treats
// as a non-admin caller.
//
// GET /metrics serves Prometheus exposition outside the /api/v1 tree, and
// every other path outside it falls through to the lab console.
package api
