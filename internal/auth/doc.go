// Package auth is Thermolab's session and role gate.
//
// Two roles exist: admin, which may mutate the thermostat registry, and
// unauthorized, which can log in but is rejected by RequireAdmin. Passwords
// in the static credential table are hashed with Argon2id at startup.
//
// The session is a signed HS256 JWT carried in an HttpOnly cookie; its
// claims hold the username and role. Logging out revokes the token ID for
// the rest of its lifetime.
//
// When the login_validation protection is off, Gate.Login skips the table
// and grants admin to any name. That hole is the point of the lab.
package auth
