package reporting

import (
	"context"
	"fmt"

	"github.com/nerrad567/fleetwan-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Publisher is the subset of the MQTT client the reporter needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTReporter delivers uplinks by publishing the raw payload to
// fleetwan/uplink/{applicationID}/{devEUI}. Application consumers
// subscribe per application with a single-level wildcard.
type MQTTReporter struct {
	pub Publisher
	qos byte
}

// NewMQTTReporter creates an MQTT reporter publishing at QoS 1.
func NewMQTTReporter(pub Publisher) *MQTTReporter {
	return &MQTTReporter{pub: pub, qos: 1}
}

func (r *MQTTReporter) Report(ctx context.Context, app *store.Application, up *Uplink) error {
	devEUI := up.DevEUI
	if devEUI == "" {
		devEUI = "unknown"
	}
	topic := mqtt.Topics{}.Uplink(app.ID, devEUI)
	if err := r.pub.Publish(topic, up.Payload, r.qos, false); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}
