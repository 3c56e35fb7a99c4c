package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListThermostats(t *testing.T) {
	env := newTestEnv(t)

	resp := decode(t, env.do(t, http.MethodGet, "/api/v1/list_thermostats", nil, nil))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["count"])
	assert.Equal(t, []any{map[string]any{"id": env.seeded.ID, "temperature": float64(21)}}, resp["thermostats"])
}

func TestMutations_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	attacker := env.login(t, "attacker", "hackerpass")

	cases := []struct {
		path    string
		body    map[string]any
		message string
	}{
		{"/api/v1/add_thermostat", nil, "Unauthorized: Only admin can add thermostats."},
		{"/api/v1/remove_thermostat", map[string]any{"thermostat_id": env.seeded.ID}, "Unauthorized: Only admin can remove thermostats."},
		{"/api/v1/set_temperature", map[string]any{"thermostat_id": env.seeded.ID, "temperature": 18}, "Unauthorized: Only admin can set temperature."},
	}
	for _, tc := range cases {
		for _, cookie := range []*http.Cookie{nil, attacker} {
			w := env.do(t, http.MethodPost, tc.path, tc.body, cookie)
			assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
			resp := decode(t, w)
			assert.Equal(t, ErrCodeUnauthorized, resp["code"])
			assert.Equal(t, tc.message, resp["message"])
		}
	}

	// Nothing changed.
	got, err := env.registry.Get(env.seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, got.Temperature)
	assert.Equal(t, 1, env.registry.Count())
}

func TestRemove_ForbiddenBeforeBodyParse(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/remove_thermostat", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddRemoveList(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	w := env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	added := decode(t, w)["thermostat"].(map[string]any)
	id := added["id"].(string)
	assert.Len(t, id, 36)
	assert.Equal(t, float64(21), added["temperature"])
	assert.Equal(t, 2, env.registry.Count())

	w = env.do(t, http.MethodPost, "/api/v1/remove_thermostat", map[string]any{"thermostat_id": id}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["removed"].(map[string]any)["id"])

	resp := decode(t, env.do(t, http.MethodGet, "/api/v1/list_thermostats", nil, nil))
	assert.Equal(t, float64(1), resp["count"])

	w = env.do(t, http.MethodPost, "/api/v1/remove_thermostat", map[string]any{"thermostat_id": id}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Thermostat ID not found.", decode(t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/v1/remove_thermostat", map[string]any{}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetTemperature_RangeSweep(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	for temp := 5; temp <= 30; temp++ {
		body := map[string]any{"thermostat_id": env.seeded.ID, "temperature": temp}
		w := env.do(t, http.MethodPost, "/api/v1/set_temperature", body, admin)
		resp := decode(t, w)

		if temp >= 10 && temp <= 25 {
			require.Equal(t, http.StatusOK, w.Code, "temp %d", temp)
			assert.Equal(t, fmt.Sprintf("Thermostat %s set to %d°C.", env.seeded.ID, temp), resp["message"])
			assert.Equal(t, float64(temp), resp["thermostat"].(map[string]any)["temperature"])
			continue
		}
		assert.Equal(t, http.StatusBadRequest, w.Code, "temp %d", temp)
		assert.Equal(t, ErrCodeOutOfRange, resp["code"])
		assert.Equal(t, "Temperature must be between 10°C and 25°C.", resp["message"])
	}

	got, err := env.registry.Get(env.seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Temperature)
}

func TestSetTemperature_InvalidValues(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	for _, v := range []any{"abc", "", nil, true, []int{1}, map[string]int{"t": 1}} {
		body := map[string]any{"thermostat_id": env.seeded.ID, "temperature": v}
		w := env.do(t, http.MethodPost, "/api/v1/set_temperature", body, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code, "value %v", v)
		resp := decode(t, w)
		assert.Equal(t, ErrCodeInvalidValue, resp["code"])
		assert.Equal(t, "Invalid temperature value.", resp["message"])
	}

	// Numeric strings and fractional numbers are accepted.
	for v, want := range map[any]int{"18": 18, " 12 ": 12, 22.9: 22} {
		body := map[string]any{"thermostat_id": env.seeded.ID, "temperature": v}
		w := env.do(t, http.MethodPost, "/api/v1/set_temperature", body, admin)
		require.Equal(t, http.StatusOK, w.Code, "value %v", v)
		assert.Equal(t, float64(want), decode(t, w)["thermostat"].(map[string]any)["temperature"])
	}
}

func TestSetTemperature_NotFoundBeforeValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	w := env.do(t, http.MethodPost, "/api/v1/set_temperature", map[string]any{"thermostat_id": "missing", "temperature": "abc"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddThenOutOfRangeThenValid(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "user1", "password123")

	w := env.do(t, http.MethodPost, "/api/v1/add_thermostat", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["thermostat"].(map[string]any)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/set_temperature", map[string]any{"thermostat_id": id, "temperature": 30}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	got, err := env.registry.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 21, got.Temperature)

	w = env.do(t, http.MethodPost, "/api/v1/set_temperature", map[string]any{"thermostat_id": id, "temperature": 18}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fmt.Sprintf("Thermostat %s set to 18°C.", id), decode(t, w)["message"])
}
