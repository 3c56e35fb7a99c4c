package security

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanel_DefaultsAllEnabled(t *testing.T) {
	p := NewPanel(AllEnabled())
	assert.Equal(t, Toggles{ACL: true, LoginValidation: true, DoSProtection: true}, p.Snapshot())
}

func TestPanel_PartialUpdate(t *testing.T) {
	p := NewPanel(AllEnabled())

	got := p.Update(map[string]any{"acl": false})

	assert.Equal(t, Toggles{ACL: false, LoginValidation: true, DoSProtection: true}, got)
	assert.Equal(t, got, p.Snapshot())
}

func TestPanel_UnknownKeysIgnored(t *testing.T) {
	p := NewPanel(AllEnabled())

	got := p.Update(map[string]any{"firewall": false, "ACL": false})

	assert.Equal(t, AllEnabled(), got)
}

func TestPanel_EmptyUpdate(t *testing.T) {
	p := NewPanel(Toggles{ACL: true})
	assert.Equal(t, Toggles{ACL: true}, p.Update(nil))
	assert.Equal(t, Toggles{ACL: true}, p.Update(map[string]any{}))
}

func TestPanel_UpdateFromJSON(t *testing.T) {
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"acl":0,"login_validation":"no","dos_protection":null}`), &body))

	got := NewPanel(AllEnabled()).Update(body)

	// "no" is a non-empty string and therefore true.
	assert.Equal(t, Toggles{ACL: false, LoginValidation: true, DoSProtection: false}, got)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"zero float", 0.0, false},
		{"float", 2.5, true},
		{"zero int", 0, false},
		{"negative int", -1, true},
		{"empty string", "", false},
		{"string false", "false", true},
		{"empty slice", []any{}, false},
		{"slice", []any{0}, true},
		{"empty map", map[string]any{}, false},
		{"map", map[string]any{"x": nil}, true},
		{"other", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.in))
		})
	}
}

func TestPanel_ConcurrentAccess(t *testing.T) {
	p := NewPanel(AllEnabled())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			p.Update(map[string]any{KeyDoSProtection: on})
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = p.Snapshot()
		}()
	}
	wg.Wait()

	// Other toggles are untouched by the race.
	s := p.Snapshot()
	assert.True(t, s.ACL)
	assert.True(t, s.LoginValidation)
}
