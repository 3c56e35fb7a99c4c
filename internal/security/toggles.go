// Package security holds the lab's three protection switches.
//
// Any caller may flip them; every gated operation reads them. Each read and
// each update is atomic on its own, but a caller that reads the panel and
// then acts on the result can race a concurrent update.
package security

import (
	"sync"
)

// Toggle names as they appear on the wire.
const (
	KeyACL             = "acl"
	KeyLoginValidation = "login_validation"
	KeyDoSProtection   = "dos_protection"
)

// Toggles is a snapshot of the protection switches.
type Toggles struct {
	ACL             bool `json:"acl"`
	LoginValidation bool `json:"login_validation"`
	DoSProtection   bool `json:"dos_protection"`
}

// AllEnabled is the default state: every protection on.
func AllEnabled() Toggles {
	return Toggles{ACL: true, LoginValidation: true, DoSProtection: true}
}

// Panel is the shared, mutable toggle set.
type Panel struct {
	mu      sync.RWMutex
	toggles Toggles
}

// NewPanel creates a panel starting from initial.
func NewPanel(initial Toggles) *Panel {
	return &Panel{toggles: initial}
}

// Snapshot returns the current toggle values.
func (p *Panel) Snapshot() Toggles {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.toggles
}

// Update overwrites each recognised key present in partial with the
// truthiness of its value and returns the resulting state. Unrecognised
// keys are ignored and absent keys keep their value.
func (p *Panel) Update(partial map[string]any) Toggles {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, raw := range partial {
		switch key {
		case KeyACL:
			p.toggles.ACL = Truthy(raw)
		case KeyLoginValidation:
			p.toggles.LoginValidation = Truthy(raw)
		case KeyDoSProtection:
			p.toggles.DoSProtection = Truthy(raw)
		}
	}
	return p.toggles
}

// Truthy coerces a decoded JSON value to a boolean: false, nil, zero,
// the empty string and empty arrays or objects are false, everything else
// is true. Note that the string "false" is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
