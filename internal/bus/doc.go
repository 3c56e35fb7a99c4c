// Package bus carries Thermolab state and events over MQTT.
//
// Publisher writes retained thermostat state, empty tombstones when a
// thermostat is removed, and non-retained lab events. ListenSecurityCommands
// applies toggle updates that arrive on thermolab/command/security, so a
// lab instructor can flip protections from outside the HTTP API.
//
// Payloads pass through a seal.Sealer. With sealing disabled they are plain
// JSON.
package bus
