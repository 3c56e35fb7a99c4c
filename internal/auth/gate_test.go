package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/thermolab/internal/infrastructure/config"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGateFromConfig([]config.CredentialConfig{
		{Username: "user1", Password: "password123", Role: "admin"},
		{Username: "attacker", Password: "hackerpass", Role: "unauthorized"},
	}, fastParams)
	require.NoError(t, err)
	return g
}

func TestLogin_Validated(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name     string
		username string
		password string
		wantRole Role
		wantErr  error
	}{
		{"admin", "user1", "password123", RoleAdmin, nil},
		{"unauthorized account", "attacker", "hackerpass", RoleUnauthorized, nil},
		{"wrong password", "user1", "hackerpass", "", ErrInvalidCredentials},
		{"unknown user", "mallory", "password123", "", ErrInvalidCredentials},
		{"empty", "", "", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := g.Login(tt.username, tt.password, true)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Session{}, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, s.Username)
			assert.Equal(t, tt.wantRole, s.Role)
		})
	}
}

func TestLogin_ValidationOffGrantsAdmin(t *testing.T) {
	g := newTestGate(t)

	for _, name := range []string{"attacker", "nobody", ""} {
		s, err := g.Login(name, "wrong", false)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, s.Role, "user %q", name)
		assert.Equal(t, name, s.Username)
	}
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(&Session{Username: "user1", Role: RoleAdmin}))
	assert.ErrorIs(t, RequireAdmin(&Session{Username: "attacker", Role: RoleUnauthorized}), ErrUnauthorized)
	assert.ErrorIs(t, RequireAdmin(nil), ErrUnauthorized)
}

func TestNewGate_Rejects(t *testing.T) {
	_, err := NewGate([]Credential{
		{Username: "a", Role: RoleAdmin},
		{Username: "a", Role: RoleAdmin},
	})
	assert.Error(t, err, "duplicate")

	_, err = NewGate([]Credential{{Username: "", Role: RoleAdmin}})
	assert.Error(t, err, "empty username")

	_, err = NewGateFromConfig([]config.CredentialConfig{{Username: "x", Password: "y", Role: "owner"}}, fastParams)
	assert.Error(t, err, "unknown role")
}

func TestLogin_MalformedStoredHash(t *testing.T) {
	g, err := NewGate([]Credential{{Username: "legacy", PasswordHash: "5f4dcc3b", Role: RoleAdmin}})
	require.NoError(t, err)

	_, err = g.Login("legacy", "password", true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestGate_Usernames(t *testing.T) {
	assert.ElementsMatch(t, []string{"user1", "attacker"}, newTestGate(t).Usernames())
}
