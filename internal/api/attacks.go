package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/thermolab/internal/attack"
	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/infrastructure/influxdb"
)

const (
	attackKindDoS          = "dos"
	attackKindUnauthorized = "unauthorized"

	msgInvalidChoice = "Invalid intensity choice"
)

// handleSimulateDoS runs a DoS simulation. The pause happens on this
// request's goroutine only. A missing intensity means low; an empty one is
// invalid unless protection blocks the attack first.
func (s *Server) handleSimulateDoS(w http.ResponseWriter, r *http.Request) {
	intensity := attack.DefaultIntensity
	if q := r.URL.Query(); q.Has("intensity") {
		intensity = attack.Intensity(q.Get("intensity"))
	}

	res, err := s.simulator.SimulateDoS(s.panel.Snapshot().DoSProtection, intensity)
	if err != nil {
		if !errors.Is(err, attack.ErrInvalidChoice) {
			s.logger.Error("dos simulation failed", "error", err)
			writeInternalError(w, "simulation failed")
			return
		}
		s.record(r, audit.ActionAttackDoS, audit.OutcomeFailed, sessionFrom(r.Context()), "",
			map[string]any{"intensity": string(intensity), "code": ErrCodeInvalidChoice})
		writeError(w, http.StatusBadRequest, ErrCodeInvalidChoice, msgInvalidChoice)
		return
	}

	if res.Outcome != attack.OutcomeBlocked {
		s.metrics.dosDelay.Observe(res.Delay)
	}
	details := map[string]any{
		"kind":          attackKindDoS,
		"outcome":       res.Outcome,
		"intensity":     res.Intensity,
		"response_time": res.Delay,
		"packet_loss":   res.PacketLoss,
	}
	sample := influxdb.AttackSample{
		Kind:       attackKindDoS,
		Outcome:    string(res.Outcome),
		Delay:      res.Delay,
		PacketLoss: res.PacketLoss,
	}
	// A blocked attack echoes whatever intensity was asked for; keep
	// unknown values out of the telemetry tags.
	if _, err := attack.ProfileFor(res.Intensity); err == nil {
		sample.Intensity = string(res.Intensity)
	}
	s.attackFinished(r, audit.ActionAttackDoS, res.Outcome, details, sample)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       res.Succeeded(),
		"message":       res.Message,
		"response_time": res.Delay,
	})
}

// handleSimulateUnauthorized is blocked only while both login validation
// and ACL are on.
func (s *Server) handleSimulateUnauthorized(w http.ResponseWriter, r *http.Request) {
	toggles := s.panel.Snapshot()
	res := s.simulator.SimulateUnauthorized(toggles.LoginValidation, toggles.ACL)

	details := map[string]any{
		"kind":             attackKindUnauthorized,
		"outcome":          res.Outcome,
		"login_validation": toggles.LoginValidation,
		"acl":              toggles.ACL,
	}
	s.attackFinished(r, audit.ActionAttackUnauthorized, res.Outcome, details, influxdb.AttackSample{
		Kind:    attackKindUnauthorized,
		Outcome: string(res.Outcome),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": res.Succeeded(),
		"message": res.Message,
	})
}

func (s *Server) attackFinished(r *http.Request, action audit.Action, outcome attack.Outcome, details map[string]any, sample influxdb.AttackSample) {
	kind, _ := details["kind"].(string) //nolint:errcheck // always set by callers
	s.metrics.attacks.WithLabelValues(kind, string(outcome)).Inc()
	s.record(r, action, audit.Outcome(outcome), sessionFrom(r.Context()), "", details)
	if s.telemetry != nil {
		s.telemetry.WriteAttack(sample)
	}
	s.broadcast(EventAttackSimulated, details)
}
