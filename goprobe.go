// Package goprobe is a runtime instrumentation toolkit: applications
// expose named, concurrently-updated values (instruments), and an
// asynchronous publisher streams their changes to an external sink
// such as an MQTT broker or Redis.
//
// This package re-exports the core types so common usage needs a
// single import; the implementation lives in the subpackages core,
// codec, mqtt, redispub and telemetry.
package goprobe

import (
	"github.com/itsneelabh/goprobe/core"
)

// Type aliases for the core building blocks
type Instrument[T any] = core.Instrument[T]
type TimestampedInstrument[T any] = core.TimestampedInstrument[T]
type Board = core.Board
type Cell = core.Cell
type Listener = core.Listener
type Handle = core.Handle
type Publisher = core.Publisher
type PublisherOptions = core.PublisherOptions
type Encoder = core.Encoder
type Sink = core.Sink
type PublishOptions = core.PublishOptions
type TopicFormatter = core.TopicFormatter
type Logger = core.Logger
type Telemetry = core.Telemetry
type Config = core.Config
type Option = core.Option

// Constructors re-exported for convenience
var (
	NewBoard     = core.NewBoard
	NewPublisher = core.NewPublisher
	NewConfig    = core.NewConfig
	NewStdLogger = core.NewStdLogger
)

// NewInstrument creates an instrument holding an explicit initial value.
func NewInstrument[T any](initial T) *Instrument[T] {
	return core.NewInstrument(initial)
}

// NewDefaultInstrument creates an instrument holding the zero value of T.
func NewDefaultInstrument[T any]() *Instrument[T] {
	return core.NewDefaultInstrument[T]()
}
