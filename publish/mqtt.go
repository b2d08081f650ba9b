package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBroker      = "tcp://broker.emqx.io:1883"
	defaultConnTimeout = 10 * time.Second
	disconnectQuiesce  = 250 // ms
)

// ErrTimeout is returned when the broker does not acknowledge in time
var ErrTimeout = errors.New("mqtt operation timed out")

// MQTTConfig configures an MQTTSink
type MQTTConfig struct {
	Broker         string        // e.g. tcp://broker.emqx.io:1883
	ClientID       string        // Generated when empty
	QoS            byte          // 0, 1 or 2
	Retained       bool
	ConnectTimeout time.Duration // Default 10s
}

// NewClientID returns a unique client id with the given prefix
func NewClientID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// MQTTSink publishes through a paho MQTT client
type MQTTSink struct {
	client mqtt.Client
	cfg    MQTTConfig
}

// DialMQTT connects to the broker.
func DialMQTT(cfg MQTTConfig, logger logrus.FieldLogger) (*MQTTSink, error) {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.ClientID == "" {
		cfg.ClientID = NewClientID("blink-counter")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnTimeout
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logger.WithFields(logrus.Fields{"broker": cfg.Broker, "client_id": cfg.ClientID}).Info("MQTT connected")
		})

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), cfg.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	return newMQTTSink(client, cfg), nil
}

func newMQTTSink(client mqtt.Client, cfg MQTTConfig) *MQTTSink {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnTimeout
	}
	return &MQTTSink{client: client, cfg: cfg}
}

// Publish sends payload to topic and waits for the client to hand it off.
func (s *MQTTSink) Publish(ctx context.Context, topic, payload string) error {
	token := s.client.Publish(topic, s.cfg.QoS, s.cfg.Retained, payload)

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(disconnectQuiesce)
	return nil
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}
