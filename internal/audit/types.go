// Package audit records what happened in the lab: who logged in, which
// protections were switched, which thermostats changed and how each
// simulated attack ended.
package audit

import (
	"context"
	"time"
)

// Action names an audited operation.
type Action string

const (
	ActionLogin              Action = "login"
	ActionLogout             Action = "logout"
	ActionSecurityUpdate     Action = "security_update"
	ActionThermostatAdd      Action = "thermostat_add"
	ActionThermostatRemove   Action = "thermostat_remove"
	ActionThermostatSetTemp  Action = "thermostat_set_temperature"
	ActionAttackDoS          Action = "attack_dos"
	ActionAttackUnauthorized Action = "attack_unauthorized"
)

// Outcome is how an audited operation ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeDropped  Outcome = "dropped"
)

// Entry is one row of the audit trail.
type Entry struct {
	ID         string         `json:"id"`
	Action     Action         `json:"action"`
	Outcome    Outcome        `json:"outcome"`
	Username   string         `json:"username,omitempty"`
	Role       string         `json:"role,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	RemoteAddr string         `json:"remote_addr,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter narrows a List call. Zero fields match everything.
type Filter struct {
	Action   Action
	Outcome  Outcome
	Username string
	TargetID string
	Since    time.Time
	Limit    int // default 50, max 200
	Offset   int
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository persists and queries audit entries.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}
