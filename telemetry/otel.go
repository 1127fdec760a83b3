// Package telemetry provides an OpenTelemetry-backed implementation
// of core.Telemetry.
//
// The publisher records a small fixed set of counters
// (core.MetricPublished, core.MetricDeduplicated,
// core.MetricEncodeErrors); anything else an application records
// through the same interface works identically. With no OTel SDK
// configured, the global no-op providers make every call free, so the
// toolkit can always be handed a telemetry.OTel without conditionals.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/itsneelabh/goprobe/core"
)

// OTel implements core.Telemetry on the global OpenTelemetry tracer
// and meter providers.
type OTel struct {
	tracer trace.Tracer
	meter  metric.Meter

	mu       sync.RWMutex
	counters map[string]metric.Float64Counter
}

// New creates a telemetry implementation scoped to the given name
// (used as the tracer and meter instrumentation scope).
func New(name string) *OTel {
	return &OTel{
		tracer:   otel.Tracer(name),
		meter:    otel.Meter(name),
		counters: make(map[string]metric.Float64Counter),
	}
}

// StartSpan implements core.Telemetry.
func (o *OTel) StartSpan(ctx context.Context, name string) (context.Context, core.Span) {
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// RecordMetric implements core.Telemetry. Metrics are recorded as
// counters; instruments are created lazily and cached per name.
func (o *OTel) RecordMetric(name string, value float64, labels map[string]string) {
	counter, err := o.counter(name)
	if err != nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	counter.Add(context.Background(), value, metric.WithAttributes(attrs...))
}

func (o *OTel) counter(name string) (metric.Float64Counter, error) {
	o.mu.RLock()
	counter, exists := o.counters[name]
	o.mu.RUnlock()
	if exists {
		return counter, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// Double-check after acquiring write lock
	if counter, exists = o.counters[name]; exists {
		return counter, nil
	}
	counter, err := o.meter.Float64Counter(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	o.counters[name] = counter
	return counter, nil
}

// otelSpan adapts a trace.Span to core.Span.
type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

func (s *otelSpan) RecordError(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
}
