package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/thermolab/internal/audit"
	"github.com/nerrad567/thermolab/internal/infrastructure/config"
	"github.com/nerrad567/thermolab/internal/infrastructure/database"
	"github.com/nerrad567/thermolab/migrations"
)

// withAudit wires a recorder over an in-memory SQLite audit store.
func withAudit(t *testing.T) envOption {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), migrations.FS))

	repo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(repo, nil, 64)
	ctx, cancel := context.WithCancel(context.Background())
	go recorder.Run(ctx)

	t.Cleanup(func() {
		cancel()
		<-recorder.Done()
		db.Close() //nolint:errcheck // Test cleanup
	})

	return func(d *Deps) {
		d.Audit = recorder
		d.AuditRepo = repo
		d.DBStats = func() DatabaseMetrics {
			s := db.Stats()
			return DatabaseMetrics{OpenConnections: s.OpenConnections, InUse: s.InUse, Idle: s.Idle, WaitCount: s.WaitCount}
		}
	}
}

func TestAudit_AdminOnly(t *testing.T) {
	env := newTestEnv(t, withAudit(t))

	w := env.do(t, http.MethodGet, "/api/v1/audit", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	attacker := env.login(t, "attacker", "hackerpass")
	w = env.do(t, http.MethodGet, "/api/v1/audit", nil, attacker)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized: Only admin can view the audit log.", decode(t, w)["message"])
}

func TestAudit_RecordsLabActivity(t *testing.T) {
	env := newTestEnv(t, withAudit(t))
	admin := env.login(t, "user1", "password123")

	env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, nil)
	env.do(t, http.MethodPost, "/api/v1/set_temperature", map[string]any{"thermostat_id": env.seeded.ID, "temperature": 20}, admin)
	env.do(t, http.MethodGet, "/api/v1/simulate_unauthorized", nil, nil)

	list := func(query string) map[string]any {
		w := env.do(t, http.MethodGet, "/api/v1/audit"+query, nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
		return decode(t, w)
	}

	// login, rejected add, set, attack
	require.Eventually(t, func() bool {
		return list("")["total"] == float64(4)
	}, 2*time.Second, 10*time.Millisecond)

	rejected := list("?outcome=rejected")
	require.Equal(t, float64(1), rejected["total"])
	entry := rejected["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, string(audit.ActionThermostatAdd), entry["action"])

	set := list("?action=thermostat_set_temperature&username=user1")
	require.Equal(t, float64(1), set["total"])
	entry = set["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, env.seeded.ID, entry["target_id"])
	assert.Equal(t, float64(20), entry["details"].(map[string]any)["temperature"])

	page := list("?limit=1&offset=1")
	assert.Len(t, page["entries"], 1)
	assert.Equal(t, float64(1), page["limit"])

	resp := decode(t, env.do(t, http.MethodGet, "/api/v1/metrics", nil, nil))
	assert.Equal(t, map[string]any{"enabled": true, "dropped": float64(0)}, resp["audit"])
	assert.Contains(t, resp, "database")
}

func TestAudit_BadQuery(t *testing.T) {
	env := newTestEnv(t, withAudit(t))
	admin := env.login(t, "user1", "password123")

	for _, q := range []string{"?since=yesterday", "?limit=ten", "?offset=x"} {
		w := env.do(t, http.MethodGet, "/api/v1/audit"+q, nil, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestAudit_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	w := env.do(t, http.MethodGet, "/api/v1/audit", nil, admin)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
