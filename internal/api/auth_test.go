package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/login", map[string]any{"username": "user1", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "admin", resp["role"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin_UnauthorizedRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/login", map[string]any{"username": "attacker", "password": "hackerpass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unauthorized", decode(t, w)["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{"username": "user1", "password": "wrong"},
		{"username": "nobody", "password": "password123"},
		{"username": "user1"},
		{"username": 42, "password": "password123"},
	} {
		w := env.do(t, http.MethodPost, "/api/v1/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "body %v", body)
		resp := decode(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, ErrCodeInvalidCredentials, resp["code"])
		assert.Equal(t, "Invalid credentials.", resp["message"])
		assert.Empty(t, w.Result().Cookies())
	}
}

func TestLogin_ValidationBypass(t *testing.T) {
	env := newTestEnv(t)
	env.panel.Update(map[string]any{"login_validation": false})

	w := env.do(t, http.MethodPost, "/api/v1/login", map[string]any{"username": "anyone", "password": "anything"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["role"])

	// The attacker account is promoted too.
	cookie := env.login(t, "attacker", "not-even-its-password")
	w = env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_BadBody(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "not json", "[1,2]", `"user1"`} {
		w := env.do(t, http.MethodPost, "/api/v1/login", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, ErrCodeBadRequest, decode(t, w)["code"])
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "user1", "password123")

	w := env.do(t, http.MethodPost, "/api/v1/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout should clear the cookie")

	// The old token no longer carries admin rights.
	w = env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, env.registry.Count())
}

func TestLogout_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	for range 2 {
		w := env.do(t, http.MethodPost, "/api/v1/logout", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["success"])
	}
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	req := map[string]any{"username": "attacker", "password": "hackerpass"}
	w := env.do(t, http.MethodPost, "/api/v1/login", req, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, admin)
	assert.Equal(t, http.StatusForbidden, w.Code, "previous admin token should be revoked")
}

func TestSession(t *testing.T) {
	env := newTestEnv(t)

	resp := decode(t, env.do(t, http.MethodGet, "/api/v1/session", nil, nil))
	assert.Equal(t, false, resp["authenticated"])

	cookie := env.login(t, "attacker", "hackerpass")
	resp = decode(t, env.do(t, http.MethodGet, "/api/v1/session", nil, cookie))
	assert.Equal(t, true, resp["authenticated"])
	assert.Equal(t, "attacker", resp["username"])
	assert.Equal(t, "unauthorized", resp["role"])

	forged := &http.Cookie{Name: testCookie, Value: "not-a-token"}
	resp = decode(t, env.do(t, http.MethodGet, "/api/v1/session", nil, forged))
	assert.Equal(t, false, resp["authenticated"])
}

func TestUpdateSecurity_Partial(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/update_security", map[string]any{"acl": false, "bogus": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, map[string]any{
		"acl":              false,
		"login_validation": true,
		"dos_protection":   true,
	}, resp["security_enabled"])

	// Truthiness: 0 and "" are false, "no" is true.
	w = env.do(t, http.MethodPost, "/api/v1/update_security",
		map[string]any{"acl": "no", "login_validation": 0, "dos_protection": ""}, nil)
	assert.Equal(t, map[string]any{
		"acl":              true,
		"login_validation": false,
		"dos_protection":   false,
	}, decode(t, w)["security_enabled"])

	resp = decode(t, env.do(t, http.MethodGet, "/api/v1/security", nil, nil))
	assert.Equal(t, false, resp["security_enabled"].(map[string]any)["dos_protection"])
}

func TestUpdateSecurity_NonObject(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "[]", "true", "{"} {
		w := env.do(t, http.MethodPost, "/api/v1/update_security", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
	assert.Equal(t, true, env.panel.Snapshot().ACL)
}
