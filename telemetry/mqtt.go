package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gr-butler/windmeter/config"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	logger "github.com/sirupsen/logrus"
)

// the parts of mqtt.Client used here
type mqttClient interface {
	IsConnected() bool
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publishes wait for the broker's PUBACK, so a refused publish is not
// counted as sent.
const publishQoS = 1

// MQTT publishes to the ThingSpeak mqtt3 broker, or anything that speaks the
// same topic layout. The broker authenticates the device with its own MQTT
// credentials, the channel write key is not used.
type MQTT struct {
	client  mqttClient
	timeout time.Duration
}

func NewMQTT(cfg config.TelemetryConfig, hostname string) *MQTT {
	broker := cfg.MQTTBroker
	clientID := cfg.MQTTClientID
	if clientID == "" {
		clientID = hostname
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Infof("MQTT connected to [%v]", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warnf("MQTT connection lost [%v]", err)
	})
	return &MQTT{client: mqtt.NewClient(opts), timeout: cfg.Timeout}
}

// Topic is the ThingSpeak single field publish topic.
func Topic(channelID string, field int) string {
	return fmt.Sprintf("channels/%s/publish/fields/field%d", channelID, field)
}

func (m *MQTT) WriteField(ctx context.Context, channelID string, field int, value float64, _ string) (int, error) {
	if !m.client.IsConnected() {
		if err := m.wait(ctx, m.client.Connect()); err != nil {
			return http.StatusServiceUnavailable, fmt.Errorf("mqtt connect: %w", err)
		}
	}
	payload := strconv.FormatFloat(value, 'f', -1, 64)
	if err := m.wait(ctx, m.client.Publish(Topic(channelID, field), publishQoS, false, payload)); err != nil {
		return http.StatusBadGateway, fmt.Errorf("mqtt publish: %w", err)
	}
	return http.StatusOK, nil
}

func (m *MQTT) wait(ctx context.Context, token mqtt.Token) error {
	var expired <-chan time.Time
	if m.timeout > 0 {
		t := time.NewTimer(m.timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-token.Done():
		return token.Error()
	case <-expired:
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
