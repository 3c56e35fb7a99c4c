package mqtt

import "fmt"

// TopicPrefix roots every Thermolab topic.
const TopicPrefix = "thermolab"

// Topics builds Thermolab topic names.
//
//	thermolab/state/thermostat/{id}   retained thermostat state, empty = removed
//	thermolab/event/{type}            lab events (not retained)
//	thermolab/command/security        toggle updates from outside the API
//	thermolab/system/status           retained online/offline, also the LWT
type Topics struct{}

// ThermostatState is the retained state topic for one thermostat.
func (Topics) ThermostatState(id string) string {
	return fmt.Sprintf("%s/state/thermostat/%s", TopicPrefix, id)
}

// AllThermostatStates matches every thermostat state topic.
func (Topics) AllThermostatStates() string {
	return TopicPrefix + "/state/thermostat/+"
}

// Event is the topic for one kind of lab event, e.g. "attack.simulated".
func (Topics) Event(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, kind)
}

// AllEvents matches every event topic.
func (Topics) AllEvents() string {
	return TopicPrefix + "/event/#"
}

// SecurityCommand carries partial toggle updates.
func (Topics) SecurityCommand() string {
	return TopicPrefix + "/command/security"
}

// SystemStatus is the retained service status topic.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}
