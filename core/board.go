package core

import (
	"fmt"
	"sync"
)

// Board is a fixed registry mapping unique string keys to instruments.
// Keys and count are established during construction via Register and
// never change afterwards; lookups are case-sensitive exact matches.
//
// The board replaces compile-time field-to-name wiring with an explicit
// builder: one Register call per instrument, executed once at startup.
type Board struct {
	mu    sync.RWMutex
	names []string
	cells map[string]Cell
	wired bool
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{cells: make(map[string]Cell)}
}

// Register adds an instrument under a unique name. Registration order
// is preserved and determines the order of initial notifications when
// a listener is wired. Returns ErrAlreadyRegistered for duplicate
// names and ErrAlreadyWired when called after WireListener.
func (b *Board) Register(name string, c Cell) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wired {
		return fmt.Errorf("register %q after wiring: %w", name, ErrAlreadyWired)
	}
	if _, ok := b.cells[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRegistered)
	}
	b.cells[name] = c
	b.names = append(b.names, name)
	return nil
}

// MustRegister is Register that panics on error, for static startup
// wiring where a failure is a programming error.
func (b *Board) MustRegister(name string, c Cell) {
	if err := b.Register(name, c); err != nil {
		panic(err)
	}
}

// Names returns all registered keys in registration order. The result
// is a copy and stable across calls.
func (b *Board) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Len returns the number of registered instruments.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.names)
}

// Lookup returns the cell registered under name, if any.
func (b *Board) Lookup(name string) (Cell, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.cells[name]
	return c, ok
}

// EncodeReading looks up name and encodes the instrument's current
// value with enc. Returns ErrNotFound for unknown names; encoder
// failures are wrapped so they satisfy errors.Is(err, ErrSerialization).
// Nothing is written on failure.
func (b *Board) EncodeReading(name string, enc Encoder) ([]byte, error) {
	b.mu.RLock()
	c, ok := b.cells[name]
	b.mu.RUnlock()
	if !ok {
		return nil, &ProbeError{Op: "board.EncodeReading", Kind: "board", Name: name, Err: ErrNotFound}
	}
	v, err := c.Snapshot()
	if err != nil {
		return nil, &ProbeError{Op: "board.EncodeReading", Kind: "instrument", Name: name, Err: err}
	}
	payload, err := enc.Encode(v)
	if err != nil {
		return nil, &ProbeError{
			Op:   "board.EncodeReading",
			Kind: "encoder",
			Name: name,
			Err:  fmt.Errorf("%w: %v", ErrSerialization, err),
		}
	}
	return payload, nil
}

// WireListener sets l on every registered instrument, in registration
// order. Each wiring synchronously delivers that instrument's one-time
// initial notification, so a single call during startup produces one
// notification per instrument, in registration order.
//
// A board is wired at most once; a second call returns ErrAlreadyWired.
func (b *Board) WireListener(l Listener) error {
	b.mu.Lock()
	if b.wired {
		b.mu.Unlock()
		return ErrAlreadyWired
	}
	b.wired = true
	names := b.names
	cells := b.cells
	b.mu.Unlock()

	for _, name := range names {
		cells[name].SetNameAndListener(name, l)
	}
	return nil
}
