package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ekisa-team/lingua/internal/config"
)

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs through logger, or the default
// logger when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Publish implements Sink.
func (s *LogSink) Publish(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "Usage event",
		"id", ev.ID,
		"task", ev.Task,
		"service_id", ev.ServiceID,
		"caller_ip", ev.CallerIP,
		"api_key_id", ev.APIKeyID,
		"consent", ev.Consent,
		"error", ev.Error,
		"elapsed", ev.Elapsed,
	)
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }

// publisher is the part of paho.Client the MQTT sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes events as JSON to an MQTT topic.
type MQTTSink struct {
	client  publisher
	topic   string
	qos     byte
	timeout time.Duration
}

const publishTimeout = 5 * time.Second

// NewMQTTSink connects to the broker in cfg.
func NewMQTTSink(cfg config.MQTTConfig) (*MQTTSink, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		slog.Error("Usage MQTT connection lost", "broker", cfg.Broker, "error", err)
	})

	client := paho.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		// Connection keeps retrying in the background.
		slog.Warn("Usage sink not connected yet", "broker", cfg.Broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("usage: connect to %s: %w", cfg.Broker, err)
	} else {
		slog.Info("Connected usage sink", "broker", cfg.Broker, "topic", cfg.Topic)
	}

	return newMQTTSink(client, cfg.Topic, cfg.QoS), nil
}

func newMQTTSink(client publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, qos: qos, timeout: publishTimeout}
}

// Publish implements Sink.
func (s *MQTTSink) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("usage: marshal event: %w", err)
	}

	token := s.client.Publish(s.topic, s.qos, false, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("usage: publish to %s: timed out", s.topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("usage: publish to %s: %w", s.topic, err)
	}

	return nil
}

// Close implements Sink.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}

// NewSink builds the sink selected by cfg.
func NewSink(cfg config.UsageConfig) (Sink, error) {
	switch cfg.Sink {
	case config.SinkTypeMQTT:
		return NewMQTTSink(cfg.MQTT)
	default:
		return NewLogSink(nil), nil
	}
}
