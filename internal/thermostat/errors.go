package thermostat

import "errors"

// Domain errors for the thermostat package, checked with errors.Is.
// Role failures surface as auth.ErrUnauthorized.
var (
	// ErrNotFound is returned when a thermostat ID does not exist.
	ErrNotFound = errors.New("thermostat: not found")

	// ErrInvalidValue is returned when a temperature is not an integer.
	ErrInvalidValue = errors.New("thermostat: invalid temperature value")

	// ErrOutOfRange is returned when a temperature is outside [MinTemperature, MaxTemperature].
	ErrOutOfRange = errors.New("thermostat: temperature out of range")
)
