package notify

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes event messages to a broker topic, typically for home
// automation integrations.
type MQTT struct {
	client mqtt.Client
	topic  string
}

// NewMQTT connects to the broker and returns the channel. Returns nil
// when no broker is configured.
func NewMQTT(broker, topic string) (*MQTT, error) {
	if broker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID("elnet-dashboard")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &MQTT{client: client, topic: topic}, nil
}

// Name implements Notifier.
func (m *MQTT) Name() string { return "mqtt" }

// Send publishes the message to the topic at QoS 0.
func (m *MQTT) Send(ctx context.Context, text string) error {
	token := m.client.Publish(m.topic, 0, false, text)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish to %s timed out", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}
