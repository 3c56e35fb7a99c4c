// Package influxdb records Thermolab telemetry in InfluxDB v2.
//
// Three measurements are written:
//   - attack_simulations: one point per simulated attack, tagged by kind,
//     outcome and intensity
//   - thermostat_metrics: temperature per thermostat after every change
//   - security_toggles: toggle state after every update, tagged by source
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off; a nil *Client is safe to write to
//	}
//	defer client.Close()
//
//	client.WriteThermostat("3f2a9c1e", 22)
//
// Writes are non-blocking and batched per batch_size and flush_interval.
// Asynchronous write failures reach the SetOnError callback.
package influxdb
