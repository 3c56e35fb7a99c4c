package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementAttack     = "attack_simulations"
	MeasurementThermostat = "thermostat_metrics"
	MeasurementToggles    = "security_toggles"
)

// AttackSample is one simulated attack. Delay is in seconds.
type AttackSample struct {
	Kind       string
	Outcome    string
	Intensity  string
	Delay      float64
	PacketLoss float64
}

// WriteAttack records a simulated attack.
//
//	client.WriteAttack(influxdb.AttackSample{Kind: "dos", Outcome: "success", Intensity: "high", Delay: 1.7, PacketLoss: 0.42})
func (c *Client) WriteAttack(s AttackSample) {
	c.writePoint(attackPoint(s, time.Now()))
}

// WriteThermostat records a thermostat temperature.
func (c *Client) WriteThermostat(id string, temperature int) {
	c.writePoint(thermostatPoint(id, temperature, time.Now()))
}

// WriteToggles records the security toggle state after a change, tagged
// with where the change came from ("api" or "mqtt").
func (c *Client) WriteToggles(source string, acl, loginValidation, dosProtection bool) {
	c.writePoint(togglesPoint(source, acl, loginValidation, dosProtection, time.Now()))
}

// WritePoint writes a custom point stamped now.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.writePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func attackPoint(s AttackSample, ts time.Time) *write.Point {
	tags := map[string]string{
		"kind":    s.Kind,
		"outcome": s.Outcome,
	}
	if s.Intensity != "" {
		tags["intensity"] = s.Intensity
	}
	return write.NewPoint(MeasurementAttack, tags, map[string]any{
		"count":       1,
		"delay_s":     s.Delay,
		"packet_loss": s.PacketLoss,
	}, ts)
}

func thermostatPoint(id string, temperature int, ts time.Time) *write.Point {
	return write.NewPoint(MeasurementThermostat,
		map[string]string{"thermostat_id": id},
		map[string]any{"temperature_c": temperature},
		ts)
}

func togglesPoint(source string, acl, loginValidation, dosProtection bool, ts time.Time) *write.Point {
	return write.NewPoint(MeasurementToggles, map[string]string{"source": source}, map[string]any{
		"acl":              acl,
		"login_validation": loginValidation,
		"dos_protection":   dosProtection,
	}, ts)
}
