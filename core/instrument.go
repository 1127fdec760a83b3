package core

import "sync"

// Cell is the board-facing view of an instrument, erasing the value
// type so instruments of different types can share one registry.
type Cell interface {
	// Snapshot returns a copy of the current value for encoding.
	Snapshot() (interface{}, error)
	// SetNameAndListener performs the one-time wiring of an instrument
	// into a board. Intended for Board use only.
	SetNameAndListener(name string, l Listener)
}

// Instrument is a thread-safe, named value cell with update
// notification. Arbitrary goroutines may call Read and Update
// concurrently; a reader/writer lock totally orders writers and
// excludes readers during a write.
//
// Name and listener are assigned exactly once, when the instrument is
// wired into a Board, and never change afterwards. Wiring an
// instrument twice is a programming error and panics.
type Instrument[T any] struct {
	mu       sync.RWMutex
	value    T
	poisoned bool
	named    bool
	name     string
	listener Listener
}

// NewInstrument creates an instrument holding an explicit initial value.
func NewInstrument[T any](initial T) *Instrument[T] {
	return &Instrument[T]{value: initial}
}

// NewDefaultInstrument creates an instrument holding the zero value of T.
func NewDefaultInstrument[T any]() *Instrument[T] {
	return &Instrument[T]{}
}

// Read returns a snapshot copy of the current value. It blocks only
// while a writer holds the lock. After a mutator has panicked inside
// Update, the instrument is poisoned and Read returns ErrPoisoned.
func (i *Instrument[T]) Read() (T, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.poisoned {
		var zero T
		return zero, ErrPoisoned
	}
	return i.value, nil
}

// Update acquires exclusive access, applies fn to the value in place,
// releases the lock, and then notifies the wired listener with the
// instrument's name. The notification is a hand-off: Update does not
// wait for it to be consumed.
//
// If fn panics, the instrument is marked poisoned (subsequent Read and
// Update calls return ErrPoisoned) and the panic is re-raised.
func (i *Instrument[T]) Update(fn func(*T)) error {
	i.mu.Lock()
	if i.poisoned {
		i.mu.Unlock()
		return ErrPoisoned
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				i.poisoned = true
				i.mu.Unlock()
				panic(r)
			}
		}()
		fn(&i.value)
	}()
	name, l := i.name, i.listener
	i.mu.Unlock()
	if l != nil {
		l.InstrumentUpdated(name)
	}
	return nil
}

// Snapshot implements Cell. The returned value is a copy taken under
// the read lock.
func (i *Instrument[T]) Snapshot() (interface{}, error) {
	v, err := i.Read()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SetNameAndListener implements Cell. It names the instrument and then
// synchronously delivers one initial notification before attaching the
// listener, so the first observer sees at least one notification even
// if the value never changes again (required for publish-last-known-
// state semantics such as broker-side retained messages).
func (i *Instrument[T]) SetNameAndListener(name string, l Listener) {
	i.mu.Lock()
	if i.named {
		i.mu.Unlock()
		panic("goprobe: instrument already wired to a board")
	}
	i.name = name
	i.named = true
	i.mu.Unlock()

	// Deliver the initial notification before the listener is attached:
	// a concurrent Update cannot produce a notification that precedes it.
	l.InstrumentUpdated(name)

	i.mu.Lock()
	i.listener = l
	i.mu.Unlock()
}
