package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/auth"
)

const msgInvalidCredentials = "Invalid credentials."

// handleLogin checks the credentials and sets the session cookie. With
// login validation switched off every caller is admin.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeBadRequest(w, errNotObject.Error())
		return
	}
	username := stringField(body, "username")
	validate := s.panel.Snapshot().LoginValidation

	sess, err := s.gate.Login(username, stringField(body, "password"), validate)
	if err != nil {
		s.metrics.logins.WithLabelValues(string(audit.OutcomeRejected), strconv.FormatBool(validate)).Inc()
		s.record(r, audit.ActionLogin, audit.OutcomeRejected, &auth.Session{Username: username}, "", nil)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, msgInvalidCredentials)
			return
		}
		s.logger.Error("login failed", "username", username, "error", err)
		writeInternalError(w, "login failed")
		return
	}

	token, expires, err := s.sessions.Issue(sess)
	if err != nil {
		s.logger.Error("issuing session token", "username", username, "error", err)
		writeInternalError(w, "failed to create session")
		return
	}
	if old := tokenFrom(r.Context()); old != "" {
		s.sessions.Revoke(old)
	}
	http.SetCookie(w, s.sessionCookie(token, expires))

	s.metrics.logins.WithLabelValues(string(audit.OutcomeSuccess), strconv.FormatBool(validate)).Inc()
	s.record(r, audit.ActionLogin, audit.OutcomeSuccess, &sess, "", map[string]any{"validated": validate})

	writeOK(w, map[string]any{"role": sess.Role, "username": sess.Username})
}

// handleLogout revokes the session token and clears the cookie. It
// succeeds whether or not a session existed.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFrom(r.Context()); token != "" {
		s.sessions.Revoke(token)
	}
	if sess := sessionFrom(r.Context()); sess != nil {
		s.record(r, audit.ActionLogout, audit.OutcomeSuccess, sess, "", nil)
	}
	http.SetCookie(w, s.sessionCookie("", time.Unix(0, 0)))
	writeOK(w, nil)
}

// handleSession reports who the caller is logged in as.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeOK(w, map[string]any{"authenticated": false})
		return
	}
	writeOK(w, map[string]any{
		"authenticated": true,
		"username":      sess.Username,
		"role":          sess.Role,
	})
}

func (s *Server) sessionCookie(token string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     s.sessCfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.sessCfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	return c
}
