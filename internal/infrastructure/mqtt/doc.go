// Package mqtt connects Thermolab to an MQTT broker.
//
// The broker is optional. When enabled, thermostat state is mirrored to
// retained topics, lab events are published as they happen, and toggle
// updates can arrive on a command topic. See Topics for the hierarchy.
//
// The client registers a Last Will on thermolab/system/status so
// subscribers learn when the service dies, and republishes "online" plus
// all subscriptions after every reconnect.
package mqtt
