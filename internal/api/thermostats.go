package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
	"github.com/nerrad567/thermolab/internal/thermostat"
)

const (
	msgAddForbidden    = "Unauthorized: Only admin can add thermostats."
	msgRemoveForbidden = "Unauthorized: Only admin can remove thermostats."
	msgSetForbidden    = "Unauthorized: Only admin can set temperature."
	msgNotFound        = "Thermostat ID not found."
	msgInvalidValue    = "Invalid temperature value."
)

// Operation labels for metrics.
const (
	opAdd    = "add"
	opRemove = "remove"
	opSet    = "set_temperature"
)

func (s *Server) handleListThermostats(w http.ResponseWriter, _ *http.Request) {
	list := s.registry.List()
	writeOK(w, map[string]any{"thermostats": list, "count": len(list)})
}

func (s *Server) handleAddThermostat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	t, err := s.registry.Add(sess)
	if err != nil {
		s.mutationFailed(w, r, audit.ActionThermostatAdd, opAdd, sess, "", err, msgAddForbidden)
		return
	}

	s.metrics.operations.WithLabelValues(opAdd, string(audit.OutcomeSuccess)).Inc()
	s.record(r, audit.ActionThermostatAdd, audit.OutcomeSuccess, sess, t.ID, nil)
	s.thermostatChanged(t)
	s.broadcast(EventThermostatAdded, t)

	writeOK(w, map[string]any{"thermostat": t})
}

func (s *Server) handleRemoveThermostat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := auth.RequireAdmin(sess); err != nil {
		s.mutationFailed(w, r, audit.ActionThermostatRemove, opRemove, sess, "", err, msgRemoveForbidden)
		return
	}
	body, err := decodeObject(r)
	if err != nil {
		writeBadRequest(w, errNotObject.Error())
		return
	}
	id := stringField(body, "thermostat_id")

	t, err := s.registry.Remove(sess, id)
	if err != nil {
		s.mutationFailed(w, r, audit.ActionThermostatRemove, opRemove, sess, id, err, msgRemoveForbidden)
		return
	}

	s.metrics.operations.WithLabelValues(opRemove, string(audit.OutcomeSuccess)).Inc()
	s.record(r, audit.ActionThermostatRemove, audit.OutcomeSuccess, sess, t.ID, nil)
	s.thermostatGone(t.ID)
	s.broadcast(EventThermostatRemoved, t)

	writeOK(w, map[string]any{"removed": t})
}

func (s *Server) handleSetTemperature(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := auth.RequireAdmin(sess); err != nil {
		s.mutationFailed(w, r, audit.ActionThermostatSetTemp, opSet, sess, "", err, msgSetForbidden)
		return
	}
	body, err := decodeObject(r)
	if err != nil {
		writeBadRequest(w, errNotObject.Error())
		return
	}
	id := stringField(body, "thermostat_id")

	t, message, err := s.registry.SetTemperature(sess, id, body["temperature"])
	if err != nil {
		s.mutationFailed(w, r, audit.ActionThermostatSetTemp, opSet, sess, id, err, msgSetForbidden)
		return
	}

	s.metrics.operations.WithLabelValues(opSet, string(audit.OutcomeSuccess)).Inc()
	s.record(r, audit.ActionThermostatSetTemp, audit.OutcomeSuccess, sess, t.ID,
		map[string]any{"temperature": t.Temperature})
	s.thermostatChanged(t)
	s.broadcast(EventThermostatTemperature, t)

	writeOK(w, map[string]any{"thermostat": t, "message": message})
}

// mutationFailed maps a registry error onto its response, audit entry and
// metric.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, action audit.Action, op string, sess *auth.Session, id string, err error, forbidden string) {
	outcome := audit.OutcomeFailed
	var code string

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		outcome, code = audit.OutcomeRejected, ErrCodeUnauthorized
		writeForbidden(w, forbidden)
	case errors.Is(err, thermostat.ErrNotFound):
		code = ErrCodeNotFound
		writeNotFound(w, msgNotFound)
	case errors.Is(err, thermostat.ErrInvalidValue):
		code = ErrCodeInvalidValue
		writeError(w, http.StatusBadRequest, code, msgInvalidValue)
	case errors.Is(err, thermostat.ErrOutOfRange):
		code = ErrCodeOutOfRange
		writeError(w, http.StatusBadRequest, code, thermostat.RangeMessage())
	default:
		code = ErrCodeInternal
		s.logger.Error("thermostat operation failed", "operation", op, "thermostat_id", id, "error", err)
		writeInternalError(w, "thermostat operation failed")
	}

	s.metrics.operations.WithLabelValues(op, string(outcome)).Inc()
	s.record(r, action, outcome, sess, id, map[string]any{"code": code})
}
