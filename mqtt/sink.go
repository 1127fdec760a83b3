// Package mqtt provides the MQTT-backed publish sink.
//
// Instead of embedding a server into the instrumented application,
// readings are pushed to an MQTT broker. One broker connection serves
// many applications, retained messages keep the last known state
// available to late subscribers even while the application is down,
// and no ingress port has to be opened on the instrumented host.
//
// Reconnection is the sink's concern: the client auto-reconnects with
// a bounded retry interval, and the publisher above it never sees the
// connection lifecycle.
package mqtt

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/itsneelabh/goprobe/core"
)

// Sink publishes instrument readings to an MQTT broker. It implements
// core.Sink.
type Sink struct {
	cfg    core.MQTTConfig
	logger core.Logger
	client mqtt.Client

	mu        sync.RWMutex
	connected bool
	published map[string]uint64 // count per topic
	errors    uint64
}

// NewSink creates an MQTT sink from configuration. A nil logger
// defaults to core.NoOpLogger; a missing client ID gets a generated
// one. Call Connect before handing the sink to a publisher.
func NewSink(cfg core.MQTTConfig, logger core.Logger) (*Sink, error) {
	if cfg.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt broker URL is required: %w", core.ErrMissingConfiguration)
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "goprobe-" + uuid.NewString()[:8]
	}
	return &Sink{
		cfg:       cfg,
		logger:    logger,
		published: make(map[string]uint64),
	}, nil
}

// Connect establishes the broker connection and blocks until it is up
// or the configured connect timeout passes.
func (s *Sink) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.BrokerURL)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetKeepAlive(s.cfg.KeepAlive)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(s.cfg.ConnectRetryInterval)
	opts.SetMaxReconnectInterval(s.cfg.MaxReconnectInterval)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	opts.OnConnect = func(c mqtt.Client) {
		s.mu.Lock()
		s.connected = true
		s.mu.Unlock()
		s.logger.Info("MQTT connection established", map[string]interface{}{
			"broker":    s.cfg.BrokerURL,
			"client_id": s.cfg.ClientID,
		})
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		s.logger.Warn("MQTT connection lost, will auto-reconnect", map[string]interface{}{
			"error":              err.Error(),
			"broker":             s.cfg.BrokerURL,
			"max_retry_interval": s.cfg.MaxReconnectInterval.String(),
		})
	}

	s.client = mqtt.NewClient(opts)

	s.logger.Info("Connecting to MQTT broker", map[string]interface{}{
		"broker": s.cfg.BrokerURL,
	})

	token := s.client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.BrokerURL, core.ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s failed: %w", s.cfg.BrokerURL, err)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Publish implements core.Sink. The retain option maps directly to the
// MQTT retained-message flag.
func (s *Sink) Publish(ctx context.Context, topic string, payload []byte, opts core.PublishOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.isConnected() {
		s.recordError()
		return fmt.Errorf("mqtt publish to %s: %w", topic, core.ErrNotConnected)
	}

	token := s.client.Publish(topic, s.cfg.QoS, opts.Retain, payload)
	if !token.WaitTimeout(s.cfg.PublishTimeout) {
		s.recordError()
		return fmt.Errorf("mqtt publish to %s: %w", topic, core.ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		s.recordError()
		return fmt.Errorf("mqtt publish to %s failed: %w", topic, err)
	}

	s.mu.Lock()
	s.published[topic]++
	s.mu.Unlock()
	return nil
}

// Disconnect closes the broker connection, allowing in-flight work the
// given grace period in milliseconds.
func (s *Sink) Disconnect(graceMs uint) {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(graceMs)
	}
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
}

// Stats reports per-topic publish counts and the error count.
func (s *Sink) Stats() (published map[string]uint64, errors uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	published = make(map[string]uint64, len(s.published))
	for k, v := range s.published {
		published[k] = v
	}
	return published, s.errors
}

// ClientID returns the effective client ID, including a generated one.
func (s *Sink) ClientID() string {
	return s.cfg.ClientID
}

func (s *Sink) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Sink) recordError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}
