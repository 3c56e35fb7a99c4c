package api

import (
	"net/http"

	"github.com/nerrad567/thermolab/internal/audit"
)

func (s *Server) handleGetSecurity(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]any{"security_enabled": s.panel.Snapshot()})
}

// handleUpdateSecurity applies a partial toggle map. Any caller may do
// this; unknown keys are ignored.
func (s *Server) handleUpdateSecurity(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeBadRequest(w, errNotObject.Error())
		return
	}

	toggles := s.panel.Update(body)
	s.logger.Info("security toggles updated", "source", "api",
		"acl", toggles.ACL, "login_validation", toggles.LoginValidation, "dos_protection", toggles.DoSProtection)
	s.record(r, audit.ActionSecurityUpdate, audit.OutcomeSuccess, sessionFrom(r.Context()), "",
		map[string]any{"source": "api", "security_enabled": toggles})
	s.securityUpdated(toggles, "api")

	writeOK(w, map[string]any{"security_enabled": toggles})
}
