package thermostat

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Temperature bounds in whole degrees Celsius.
const (
	MinTemperature     = 10
	MaxTemperature     = 25
	DefaultTemperature = 21
)

// Thermostat is a simulated device. ID is immutable once assigned.
type Thermostat struct {
	ID          string `json:"id"`
	Temperature int    `json:"temperature"`
}

// ConfirmationMessage is the text reported after a successful set.
func ConfirmationMessage(t Thermostat) string {
	return fmt.Sprintf("Thermostat %s set to %d°C.", t.ID, t.Temperature)
}

// RangeMessage describes the accepted temperature range.
func RangeMessage() string {
	return fmt.Sprintf("Temperature must be between %d°C and %d°C.", MinTemperature, MaxTemperature)
}

// ParseTemperature converts a decoded request value to whole degrees.
//
// Integers pass through, fractional numbers truncate toward zero, and
// strings must hold a base-10 integer (surrounding whitespace allowed).
// Booleans, nil, NaN, infinities and anything else are ErrInvalidValue.
// The result is not range checked, except that integers too large for an
// int are reported as ErrOutOfRange.
func ParseTemperature(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return fromFloat(float64(n))
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidValue, t.String())
		}
		return fromFloat(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, strings.TrimSpace(t))
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidValue, t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

func fromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, f)
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %.0f", ErrOutOfRange, f)
	}
	return int(f), nil
}

// CheckRange returns ErrOutOfRange unless t is within bounds.
func CheckRange(t int) error {
	if t < MinTemperature || t > MaxTemperature {
		return fmt.Errorf("%w: %d", ErrOutOfRange, t)
	}
	return nil
}
