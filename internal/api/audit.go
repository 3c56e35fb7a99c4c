package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
)

const msgAuditForbidden = "Unauthorized: Only admin can view the audit log."

// handleListAudit pages through the audit trail, newest first. Admin only.
//
// Query parameters:
//   - action, outcome, username, target_id: exact-match filters
//   - since: RFC 3339 lower bound on created_at
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(sessionFrom(r.Context())); err != nil {
		writeForbidden(w, msgAuditForbidden)
		return
	}
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit log not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:   audit.Action(q.Get("action")),
		Outcome:  audit.Outcome(q.Get("outcome")),
		Username: q.Get("username"),
		TargetID: q.Get("target_id"),
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, name+" must be an integer")
			return
		}
		*dst = n
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeOK(w, map[string]any{
		"entries": result.Entries,
		"total":   result.Total,
		"limit":   result.Limit,
		"offset":  result.Offset,
	})
}
