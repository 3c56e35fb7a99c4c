package api

import (
	"net/http"
	"time"

	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
	"github.com/nerrad567/thermolab/internal/security"
	"github.com/nerrad567/thermolab/internal/thermostat"
)

// Event types, used as WebSocket channels and MQTT event topics.
const (
	EventThermostatAdded       = "thermostat.added"
	EventThermostatRemoved     = "thermostat.removed"
	EventThermostatTemperature = "thermostat.temperature_changed"
	EventSecurityUpdated       = "security.updated"
	EventAttackSimulated       = "attack.simulated"
)

// broadcast fans an event out to WebSocket clients and the message bus.
func (s *Server) broadcast(eventType string, data any) {
	s.hub.Broadcast(eventType, data)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Event(eventType, data); err != nil {
		s.logger.Warn("event publish failed", "event", eventType, "error", err)
	}
}

// thermostatChanged pushes the retained state and a telemetry sample.
func (s *Server) thermostatChanged(t thermostat.Thermostat) {
	if s.telemetry != nil {
		s.telemetry.WriteThermostat(t.ID, t.Temperature)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.ThermostatState(t); err != nil {
		s.logger.Warn("thermostat state publish failed", "thermostat_id", t.ID, "error", err)
	}
}

func (s *Server) thermostatGone(id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.ThermostatRemoved(id); err != nil {
		s.logger.Warn("thermostat tombstone publish failed", "thermostat_id", id, "error", err)
	}
}

func (s *Server) securityUpdated(t security.Toggles, source string) {
	s.metrics.toggles.WithLabelValues(source).Inc()
	if s.telemetry != nil {
		s.telemetry.WriteToggles(source, t.ACL, t.LoginValidation, t.DoSProtection)
	}
	s.broadcast(EventSecurityUpdated, t)
}

// SecurityChanged reports a toggle update that arrived outside HTTP, such
// as an MQTT security command.
func (s *Server) SecurityChanged(t security.Toggles) {
	s.logger.Info("security toggles updated", "source", "mqtt",
		"acl", t.ACL, "login_validation", t.LoginValidation, "dos_protection", t.DoSProtection)
	s.recorder.Record(&audit.Entry{
		Action:    audit.ActionSecurityUpdate,
		Outcome:   audit.OutcomeSuccess,
		Details:   map[string]any{"source": "mqtt", "security_enabled": t},
		CreatedAt: time.Now(),
	})
	s.securityUpdated(t, "mqtt")
}

// record queues an audit entry for the request.
func (s *Server) record(r *http.Request, action audit.Action, outcome audit.Outcome, sess *auth.Session, targetID string, details map[string]any) {
	entry := &audit.Entry{
		Action:     action,
		Outcome:    outcome,
		TargetID:   targetID,
		RemoteAddr: r.RemoteAddr,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if sess != nil {
		entry.Username = sess.Username
		entry.Role = string(sess.Role)
	}
	s.recorder.Record(entry)
}
