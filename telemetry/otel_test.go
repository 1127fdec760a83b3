package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/goprobe/core"
)

// core.Telemetry conformance
var _ core.Telemetry = (*OTel)(nil)

func TestOTel_RecordMetric(t *testing.T) {
	o := New("goprobe-test")

	// Recording against the global no-op providers must be safe.
	o.RecordMetric(core.MetricPublished, 1, map[string]string{"instrument": "a"})
	o.RecordMetric(core.MetricPublished, 1, nil)
	o.RecordMetric(core.MetricDeduplicated, 2, map[string]string{"instrument": "a"})

	o.mu.RLock()
	defer o.mu.RUnlock()
	assert.Len(t, o.counters, 2, "counters are cached per metric name")
}

func TestOTel_StartSpan(t *testing.T) {
	o := New("goprobe-test")
	ctx := context.Background()

	spanCtx, span := o.StartSpan(ctx, "publisher.publish")
	require.NotNil(t, spanCtx)
	require.NotNil(t, span)

	span.SetAttribute("instrument", "a")
	span.SetAttribute("bytes", 42)
	span.SetAttribute("retain", true)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("other", struct{ X int }{1})
	span.RecordError(errors.New("boom"))
	span.RecordError(nil)
	span.End()
}

func TestOTel_ConcurrentRecordMetric(t *testing.T) {
	o := New("goprobe-test")

	done := make(chan struct{})
	for n := 0; n < 8; n++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				o.RecordMetric(core.MetricPublished, 1, nil)
			}
		}()
	}
	for n := 0; n < 8; n++ {
		<-done
	}
}
