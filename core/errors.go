package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Instrument-related errors
	ErrPoisoned = errors.New("instrument poisoned")

	// Board-related errors
	ErrNotFound          = errors.New("instrument not found")
	ErrAlreadyRegistered = errors.New("instrument already registered")
	ErrAlreadyWired      = errors.New("listener already wired")

	// Encoding errors
	ErrSerialization = errors.New("serialization failed")

	// Publisher errors
	ErrChannelBroken = errors.New("control queue broken")

	// Sink/transport errors
	ErrNotConnected   = errors.New("sink not connected")
	ErrPublishTimeout = errors.New("publish timeout")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// ProbeError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type ProbeError struct {
	Op   string // Operation that failed (e.g., "board.EncodeReading")
	Kind string // Error kind (e.g., "instrument", "publisher", "sink")
	Name string // Optional instrument or topic name involved
	Err  error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *ProbeError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.Name != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.Name, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// NewProbeError creates a new ProbeError
func NewProbeError(op, kind string, err error) *ProbeError {
	return &ProbeError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsNotFound checks if an error represents an unknown instrument name.
// Distinguished from ErrSerialization so callers can tell "unknown key"
// from "known key, encode failed".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFatal checks if an error terminates the publisher loop rather than
// a single cycle. Transport and queue failures are loop-fatal; per-call
// failures (lookup, encode, poisoning) are not.
func IsFatal(err error) bool {
	return errors.Is(err, ErrChannelBroken) ||
		errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrPublishTimeout)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
