// Package thermostat is the in-memory registry of simulated thermostats.
//
// Every mutation is admin only: Add, Remove and SetTemperature take the
// caller's session and return auth.ErrUnauthorized before touching the
// store. Temperatures are whole degrees in [MinTemperature, MaxTemperature].
//
// The registry is lost on restart.
package thermostat
