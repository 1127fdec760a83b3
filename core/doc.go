// Package core provides the building blocks of the goprobe runtime
// instrumentation toolkit.
//
// A process exposes named, mutable, concurrently-updated values
// through Instruments. Instruments are aggregated into a Board, which
// maps unique string keys to instruments and wires a single Listener
// into all of them. The Publisher consumes update notifications from
// its control queue and turns them into deduplicated publish calls
// against a Sink (MQTT, Redis, or anything implementing the
// interface).
//
// Data flow:
//
//	writer goroutines ──Update──▶ Instrument ──notify──▶ control queue
//	                                                         │
//	             Sink ◀──publish── Publisher loop ◀──consume─┘
//
// The publisher re-reads the instrument's current value when it
// processes a notification instead of carrying values in messages.
// Updates that arrive faster than the loop drains coalesce into
// publishes of the newest state, bounding publisher work by the number
// of distinct instruments touched rather than the update count.
// Payloads identical to the last published bytes for the same name are
// filtered out.
//
// Typical wiring:
//
//	board := core.NewBoard()
//	requests := core.NewInstrument(Counter{})
//	board.MustRegister("http/requests", requests)
//
//	pub, err := core.NewPublisher(core.PublisherOptions{
//	    Sink:    sink,                    // e.g. mqtt.NewSink(...)
//	    Board:   board,
//	    Encoder: codec.JSON{},
//	    Retain:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	go pub.Run()
//	defer pub.Handle().Shutdown()
//
//	requests.Update(func(c *Counter) { c.Count++ })
package core
