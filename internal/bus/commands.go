package bus

import (
	"fmt"

	"github.com/nerrad567/thermolab/internal/infrastructure/mqtt"
	"github.com/nerrad567/thermolab/internal/seal"
	"github.com/nerrad567/thermolab/internal/security"
)

// commandQoS is used for the command subscription. Toggle updates are
// idempotent so redelivery is harmless.
const commandQoS = 1

// Subscriber is the part of mqtt.Client the command listener uses.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// ListenSecurityCommands subscribes to thermolab/command/security. Each
// message is a partial toggle map, sealed under "security" when sealing is
// on. onUpdate, if set, receives the resulting state.
func ListenSecurityCommands(sub Subscriber, sealer *seal.Sealer, panel *security.Panel, onUpdate func(security.Toggles)) error {
	handler := securityCommandHandler(sealer, panel, onUpdate)
	if err := sub.Subscribe(mqtt.Topics{}.SecurityCommand(), commandQoS, handler); err != nil {
		return fmt.Errorf("subscribing to security commands: %w", err)
	}
	return nil
}

func securityCommandHandler(sealer *seal.Sealer, panel *security.Panel, onUpdate func(security.Toggles)) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		var partial map[string]any
		if err := sealer.Open(sealSecurity, payload, &partial); err != nil {
			return fmt.Errorf("security command rejected: %w", err)
		}
		if partial == nil {
			return fmt.Errorf("security command rejected: payload is not an object")
		}

		toggles := panel.Update(partial)
		if onUpdate != nil {
			onUpdate(toggles)
		}
		return nil
	}
}
