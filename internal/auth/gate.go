package auth

import (
	"fmt"
)

// Logger is the logging surface the Gate needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Gate authenticates callers against a static credential table.
// The table is fixed at construction; Gate is safe for concurrent use.
type Gate struct {
	creds  map[string]Credential
	logger Logger
}

// NewGate builds a Gate over creds. Usernames must be unique.
func NewGate(creds []Credential) (*Gate, error) {
	table := make(map[string]Credential, len(creds))
	for _, c := range creds {
		if c.Username == "" {
			return nil, fmt.Errorf("auth: credential with empty username")
		}
		if _, dup := table[c.Username]; dup {
			return nil, fmt.Errorf("auth: duplicate credential %q", c.Username)
		}
		if _, err := ParseRole(string(c.Role)); err != nil {
			return nil, err
		}
		table[c.Username] = c
	}
	return &Gate{creds: table, logger: noopLogger{}}, nil
}

// SetLogger sets the logger. Call before serving requests.
func (g *Gate) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	g.logger = logger
}

// Login authenticates username/password.
//
// With validate false the password is never checked and the caller is
// granted RoleAdmin whatever name they gave, which is the insecure
// behaviour the login_validation toggle exists to demonstrate.
func (g *Gate) Login(username, password string, validate bool) (Session, error) {
	if !validate {
		g.logger.Warn("login accepted without validation", "username", username)
		return Session{Username: username, Role: RoleAdmin}, nil
	}

	cred, ok := g.creds[username]
	if !ok {
		g.logger.Info("login rejected", "username", username, "reason", "unknown user")
		return Session{}, ErrInvalidCredentials
	}

	match, err := VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verifying password for %q: %w", username, err)
	}
	if !match {
		g.logger.Info("login rejected", "username", username, "reason", "wrong password")
		return Session{}, ErrInvalidCredentials
	}

	g.logger.Info("login accepted", "username", username, "role", cred.Role)
	return Session{Username: cred.Username, Role: cred.Role}, nil
}

// Usernames returns the configured usernames, for startup logging.
func (g *Gate) Usernames() []string {
	names := make([]string, 0, len(g.creds))
	for name := range g.creds {
		names = append(names, name)
	}
	return names
}

// RequireAdmin returns ErrUnauthorized unless s carries RoleAdmin.
func RequireAdmin(s *Session) error {
	if !s.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}
