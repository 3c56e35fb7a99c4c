package bus

import (
	"fmt"
	"time"

	"github.com/nerrad567/thermolab/internal/infrastructure/mqtt"
	"github.com/nerrad567/thermolab/internal/seal"
	"github.com/nerrad567/thermolab/internal/thermostat"
)

// Seal names. A payload opens only under the name it was sealed with.
const (
	sealThermostat = "thermostat"
	sealEvent      = "event"
	sealSecurity   = "security"
)

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
	ClearRetained(topic string) error
}

// Event is the envelope for thermolab/event/{type} messages.
type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// Publisher publishes lab state to the broker. A nil *Publisher discards
// everything, which is how the service runs with MQTT disabled.
type Publisher struct {
	client Client
	sealer *seal.Sealer
	topics mqtt.Topics
	now    func() time.Time
}

// NewPublisher creates a publisher over client. sealer may be nil.
func NewPublisher(client Client, sealer *seal.Sealer) *Publisher {
	return &Publisher{client: client, sealer: sealer, now: time.Now}
}

// ThermostatState publishes the retained state of t.
func (p *Publisher) ThermostatState(t thermostat.Thermostat) error {
	if p == nil {
		return nil
	}
	payload, err := p.sealer.Seal(sealThermostat, t)
	if err != nil {
		return err
	}
	if err := p.client.PublishRetained(p.topics.ThermostatState(t.ID), payload); err != nil {
		return fmt.Errorf("publishing thermostat %s: %w", t.ID, err)
	}
	return nil
}

// ThermostatRemoved clears the retained state of thermostat id.
func (p *Publisher) ThermostatRemoved(id string) error {
	if p == nil {
		return nil
	}
	if err := p.client.ClearRetained(p.topics.ThermostatState(id)); err != nil {
		return fmt.Errorf("clearing thermostat %s: %w", id, err)
	}
	return nil
}

// Event publishes a non-retained event of the given type.
func (p *Publisher) Event(eventType string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := p.sealer.Seal(sealEvent, Event{
		Type:      eventType,
		Timestamp: p.now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return err
	}
	if err := p.client.PublishEvent(p.topics.Event(eventType), payload); err != nil {
		return fmt.Errorf("publishing event %s: %w", eventType, err)
	}
	return nil
}
