package thermostat

import (
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/nerrad567/thermolab/internal/auth"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// record is the stored form of a thermostat. The temperature is atomic so
// a set racing a remove writes to the detached record instead of
// resurrecting the entry.
type record struct {
	id   string
	temp atomic.Int64
}

func (r *record) snapshot() Thermostat {
	return Thermostat{ID: r.id, Temperature: int(r.temp.Load())}
}

// Registry is the in-memory thermostat store. It is not persisted.
//
// Single operations are safe for concurrent use. SetTemperature's lookup
// and write are separate steps, so last write wins.
type Registry struct {
	items  cmap.ConcurrentMap[string, *record]
	logger Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items:  cmap.New[*record](),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Seed adds n thermostats at DefaultTemperature without a role check.
// It is meant for startup only.
func (r *Registry) Seed(n int) []Thermostat {
	seeded := make([]Thermostat, 0, n)
	for i := 0; i < n; i++ {
		seeded = append(seeded, r.insert())
	}
	if n > 0 {
		r.logger.Info("thermostats seeded", "count", n)
	}
	return seeded
}

func (r *Registry) insert() Thermostat {
	rec := &record{id: uuid.NewString()}
	rec.temp.Store(DefaultTemperature)
	r.items.Set(rec.id, rec)
	return rec.snapshot()
}

// List returns every thermostat, sorted by ID.
func (r *Registry) List() []Thermostat {
	out := make([]Thermostat, 0, r.items.Count())
	for _, rec := range r.items.Items() {
		out = append(out, rec.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of thermostats.
func (r *Registry) Count() int {
	return r.items.Count()
}

// Get returns the thermostat with id.
func (r *Registry) Get(id string) (Thermostat, error) {
	rec, ok := r.items.Get(id)
	if !ok {
		return Thermostat{}, ErrNotFound
	}
	return rec.snapshot(), nil
}

// Add creates a thermostat with a fresh UUID at DefaultTemperature.
// Non-admin sessions get auth.ErrUnauthorized and nothing is created.
func (r *Registry) Add(s *auth.Session) (Thermostat, error) {
	if err := auth.RequireAdmin(s); err != nil {
		r.reject("add", s, "")
		return Thermostat{}, err
	}
	t := r.insert()
	r.logger.Info("thermostat added", "thermostat_id", t.ID, "username", s.Username)
	return t, nil
}

// Remove deletes the thermostat with id and returns it.
func (r *Registry) Remove(s *auth.Session, id string) (Thermostat, error) {
	if err := auth.RequireAdmin(s); err != nil {
		r.reject("remove", s, id)
		return Thermostat{}, err
	}
	rec, ok := r.items.Pop(id)
	if !ok {
		return Thermostat{}, ErrNotFound
	}
	t := rec.snapshot()
	r.logger.Info("thermostat removed", "thermostat_id", id, "username", s.Username)
	return t, nil
}

// SetTemperature parses value and stores it on thermostat id.
// Checks run in order: role, existence, parse, range.
func (r *Registry) SetTemperature(s *auth.Session, id string, value any) (Thermostat, string, error) {
	if err := auth.RequireAdmin(s); err != nil {
		r.reject("set_temperature", s, id)
		return Thermostat{}, "", err
	}

	rec, ok := r.items.Get(id)
	if !ok {
		return Thermostat{}, "", ErrNotFound
	}

	temp, err := ParseTemperature(value)
	if err != nil {
		return Thermostat{}, "", err
	}
	if err := CheckRange(temp); err != nil {
		return Thermostat{}, "", err
	}

	rec.temp.Store(int64(temp))
	t := Thermostat{ID: id, Temperature: temp}
	r.logger.Info("thermostat temperature set", "thermostat_id", id, "temperature", temp, "username", s.Username)
	return t, ConfirmationMessage(t), nil
}

func (r *Registry) reject(op string, s *auth.Session, id string) {
	var username, role string
	if s != nil {
		username, role = s.Username, string(s.Role)
	}
	r.logger.Warn("thermostat operation rejected",
		"operation", op,
		"thermostat_id", id,
		"username", username,
		"role", role,
	)
}
