package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Metric names recorded by the publisher loop.
const (
	MetricPublished    = "goprobe.publisher.published"
	MetricDeduplicated = "goprobe.publisher.deduplicated"
	MetricEncodeErrors = "goprobe.publisher.encode_errors"
)

type controlOp int

const (
	opUpdate controlOp = iota
	opShutdown
)

// controlMessage flows from writer goroutines (via Handle) to the
// single consumer loop. Update messages carry only the instrument
// name; the loop re-reads current state, never the value at enqueue
// time.
type controlMessage struct {
	op   controlOp
	name string
}

// Handle is a cloneable send-side reference into the publisher's
// control queue. It is a Listener (wired into the board so updates
// reach the loop) and the shutdown trigger. Safe to copy and use from
// any goroutine.
type Handle struct {
	ctl  chan<- controlMessage
	done <-chan struct{}
}

// InstrumentUpdated implements Listener by enqueueing an update
// notification. Once the publisher loop has terminated, notifications
// are discarded instead of blocking their caller.
func (h Handle) InstrumentUpdated(name string) {
	select {
	case h.ctl <- controlMessage{op: opUpdate, name: name}:
	case <-h.done:
	}
}

// Shutdown asks the publisher loop to exit after draining messages
// enqueued before it. Callable from any goroutine, any number of
// times; only the first delivered shutdown has effect.
func (h Handle) Shutdown() {
	select {
	case h.ctl <- controlMessage{op: opShutdown}:
	case <-h.done:
	}
}

// PublisherOptions configures a Publisher.
type PublisherOptions struct {
	// Sink receives the encoded payloads. Must already be connected.
	Sink Sink
	// Board is taken over by the publisher; access it afterwards
	// through Publisher.Instruments.
	Board *Board
	// Encoder produces the wire form of every instrument value.
	Encoder Encoder
	// TopicFormatter maps instrument names to topics. Defaults to
	// IdentityFormatter.
	TopicFormatter TopicFormatter
	// Retain requests sink-side retention of the last payload.
	Retain bool
	// QueueSize bounds the control queue. It is raised to the board's
	// instrument count when smaller, so the initial wiring
	// notifications never block construction. Defaults to 256.
	QueueSize int
	// Logger defaults to NoOpLogger.
	Logger Logger
	// Telemetry defaults to NoOpTelemetry.
	Telemetry Telemetry
}

// Publisher is the single consumer of the control queue. It turns
// "instrument X changed" notifications into deduplicated publish calls
// against the sink.
//
// The publisher will not publish every update. It reacts to every
// update event but re-reads the instrument's latest value rather than
// the value at notification time, so bursts against one instrument
// coalesce into publishes of the newest state. Payloads whose encoded
// bytes equal the last published bytes for that name are filtered out.
type Publisher struct {
	sink      Sink
	board     *Board
	encoder   Encoder
	topics    TopicFormatter
	retain    bool
	logger    Logger
	telemetry Telemetry

	ctl       chan controlMessage
	done      chan struct{}
	closeOnce sync.Once

	// name -> xxhash of the last published payload. Grows once, never
	// cleared: bounded by the fixed instrument count, so no eviction
	// is needed. Owned exclusively by the Run goroutine.
	lastPublished map[string]uint64
}

// NewPublisher creates a publisher and wires its Handle into the board
// as the listener, which synchronously enqueues one initial
// notification per instrument in registration order. The first Run
// therefore publishes the last known state of every instrument even
// before any update occurs.
func NewPublisher(opts PublisherOptions) (*Publisher, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("publisher sink is required: %w", ErrMissingConfiguration)
	}
	if opts.Board == nil {
		return nil, fmt.Errorf("publisher board is required: %w", ErrMissingConfiguration)
	}
	if opts.Encoder == nil {
		return nil, fmt.Errorf("publisher encoder is required: %w", ErrMissingConfiguration)
	}
	if opts.TopicFormatter == nil {
		opts.TopicFormatter = IdentityFormatter{}
	}
	if opts.Logger == nil {
		opts.Logger = &NoOpLogger{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = &NoOpTelemetry{}
	}

	size := opts.QueueSize
	if size <= 0 {
		size = 256
	}
	// The wiring below enqueues one message per instrument with no
	// consumer running yet; the buffer must hold all of them.
	if n := opts.Board.Len(); size < n {
		size = n
	}

	p := &Publisher{
		sink:          opts.Sink,
		board:         opts.Board,
		encoder:       opts.Encoder,
		topics:        opts.TopicFormatter,
		retain:        opts.Retain,
		logger:        opts.Logger,
		telemetry:     opts.Telemetry,
		ctl:           make(chan controlMessage, size),
		done:          make(chan struct{}),
		lastPublished: make(map[string]uint64),
	}

	if err := opts.Board.WireListener(p.Handle()); err != nil {
		return nil, NewProbeError("publisher.New", "publisher", err)
	}

	p.logger.Debug("Publisher created", map[string]interface{}{
		"instruments": opts.Board.Len(),
		"queue_size":  size,
		"retain":      opts.Retain,
	})
	return p, nil
}

// Instruments returns the wired board, so application code can keep
// calling Update on individual instruments after the publisher has
// taken ownership.
func (p *Publisher) Instruments() *Board {
	return p.board
}

// Handle returns a handle to this publisher, obtainable before or
// after the run loop starts.
func (p *Publisher) Handle() Handle {
	return Handle{ctl: p.ctl, done: p.done}
}

// Run consumes the control queue until a shutdown message arrives.
// Typically run in a dedicated goroutine:
//
//	go func() { errCh <- publisher.Run() }()
//
// Update handling: re-read the named instrument's current value via
// the board, hash the encoded bytes, and publish only when the hash
// differs from the last published one for that name. Encode and lookup
// failures are logged and skip the cycle without affecting other
// instruments. A sink publish failure is fatal for this run: Run
// returns the error without retrying, and the embedding code decides
// whether to restart by calling Run again on the same publisher —
// handles stay live across such returns.
//
// Run returns nil after a shutdown message; only then is the
// publisher permanently terminated. A closed control queue without a
// shutdown message means the producer side was torn down incorrectly
// and panics with ErrChannelBroken.
func (p *Publisher) Run() error {
	p.logger.Info("Publisher loop started", map[string]interface{}{
		"instruments": p.board.Len(),
	})
	for {
		msg, ok := <-p.ctl
		if !ok {
			panic(ErrChannelBroken)
		}
		switch msg.op {
		case opShutdown:
			p.terminate()
			p.logger.Info("Publisher loop stopped", map[string]interface{}{
				"published_names": len(p.lastPublished),
			})
			return nil
		case opUpdate:
			if err := p.publishCurrent(msg.name); err != nil {
				return err
			}
		}
	}
}

// terminate marks the publisher permanently stopped, releasing any
// goroutine blocked on a handle. Only graceful shutdown terminates: a
// transport-error return keeps the handles live so the publisher can
// be restarted.
func (p *Publisher) terminate() {
	p.closeOnce.Do(func() { close(p.done) })
}

// publishCurrent handles one update notification. A nil return means
// the loop keeps running, whether or not a publish happened.
func (p *Publisher) publishCurrent(name string) error {
	payload, err := p.board.EncodeReading(name, p.encoder)
	if err != nil {
		// Per-call failure: this cycle's publish is abandoned, the
		// loop stays live for other instruments.
		p.logger.Error("Failed to encode instrument reading", map[string]interface{}{
			"instrument": name,
			"error":      err.Error(),
		})
		p.telemetry.RecordMetric(MetricEncodeErrors, 1, map[string]string{"instrument": name})
		return nil
	}

	sum := xxhash.Sum64(payload)
	if last, seen := p.lastPublished[name]; seen && last == sum {
		p.telemetry.RecordMetric(MetricDeduplicated, 1, map[string]string{"instrument": name})
		return nil
	}
	p.lastPublished[name] = sum

	topic := p.topics.FormatTopic(name)
	if err := p.sink.Publish(context.Background(), topic, payload, PublishOptions{Retain: p.retain}); err != nil {
		p.logger.Error("Sink publish failed", map[string]interface{}{
			"instrument": name,
			"topic":      topic,
			"error":      err.Error(),
		})
		return &ProbeError{Op: "publisher.Run", Kind: "sink", Name: topic, Err: err}
	}

	p.telemetry.RecordMetric(MetricPublished, 1, map[string]string{"instrument": name})
	p.logger.Debug("Published instrument reading", map[string]interface{}{
		"instrument": name,
		"topic":      topic,
		"bytes":      len(payload),
	})
	return nil
}
