package core

import (
	"context"
)

// Logger interface - minimal logging interface
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Telemetry interface - optional telemetry support
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordMetric(name string, value float64, labels map[string]string)
}

// Span represents a telemetry span
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

// Listener is the capability instruments notify on every update.
// Implementations must be safe for concurrent use and cheap to call:
// Update holds no locks while notifying, but callers still block until
// the notification has been handed off.
type Listener interface {
	InstrumentUpdated(name string)
}

// Encoder turns an instrument's current value into its wire form.
// Selected once at publisher construction and applied uniformly to
// every instrument. Encoding must be deterministic for an unchanged
// value; the publisher's dedup compares encoded bytes, not values.
type Encoder interface {
	Encode(v interface{}) ([]byte, error)
}

// PublishOptions carries per-publish delivery options.
type PublishOptions struct {
	// Retain asks the sink to keep the last payload for late
	// subscribers (e.g. MQTT retained messages).
	Retain bool
}

// Sink is the external publish destination. Implementations are handed
// to the publisher already connected; reconnection and backoff policy
// belong to the sink, not the publisher.
type Sink interface {
	Publish(ctx context.Context, topic string, payload []byte, opts PublishOptions) error
}

// TopicFormatter maps an instrument name to a full topic string.
type TopicFormatter interface {
	FormatTopic(name string) string
}

// Default no-op implementations

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

// NoOpTelemetry provides a no-op telemetry implementation
type NoOpTelemetry struct{}

func (n *NoOpTelemetry) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &NoOpSpan{}
}

func (n *NoOpTelemetry) RecordMetric(name string, value float64, labels map[string]string) {}

// NoOpSpan provides a no-op span implementation
type NoOpSpan struct{}

func (n *NoOpSpan) End()                                       {}
func (n *NoOpSpan) SetAttribute(key string, value interface{}) {}
func (n *NoOpSpan) RecordError(err error)                      {}

// IdentityFormatter uses the instrument name as the topic unchanged.
// It is the default formatter.
type IdentityFormatter struct{}

func (IdentityFormatter) FormatTopic(name string) string { return name }

// PrefixFormatter prepends a fixed prefix to every instrument name,
// letting applications namespace topics (e.g. "app/instruments/") without
// renaming instruments.
type PrefixFormatter struct {
	Prefix string
}

func (f PrefixFormatter) FormatTopic(name string) string { return f.Prefix + name }
