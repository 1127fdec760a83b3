package core

import "time"

// TimestampedReading is the encoded form of a TimestampedInstrument:
// the wrapped value plus the instant of its last update.
type TimestampedReading[T any] struct {
	Value        T         `json:"value" yaml:"value"`
	LastUpdateAt time.Time `json:"last_update_at" yaml:"last_update_at"`
}

// TimestampedInstrument is an Instrument that stamps every update with
// the current UTC time. Readers of the published stream can tell a
// fresh value from a stale retained one without a side channel.
//
// The timestamp lives under the same lock as the value, so an encoded
// reading is always internally consistent.
type TimestampedInstrument[T any] struct {
	Instrument[TimestampedReading[T]]
}

// NewTimestampedInstrument creates a timestamped instrument holding an
// explicit initial value, stamped with the construction time.
func NewTimestampedInstrument[T any](initial T) *TimestampedInstrument[T] {
	i := &TimestampedInstrument[T]{}
	i.value = TimestampedReading[T]{Value: initial, LastUpdateAt: time.Now().UTC()}
	return i
}

// Read returns a snapshot copy of the wrapped value.
func (i *TimestampedInstrument[T]) Read() (T, error) {
	r, err := i.Instrument.Read()
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Value, nil
}

// ReadTime returns the instant of the last update.
func (i *TimestampedInstrument[T]) ReadTime() (time.Time, error) {
	r, err := i.Instrument.Read()
	if err != nil {
		return time.Time{}, err
	}
	return r.LastUpdateAt, nil
}

// Update applies fn to the wrapped value and refreshes the timestamp
// under the same exclusive lock.
func (i *TimestampedInstrument[T]) Update(fn func(*T)) error {
	return i.Instrument.Update(func(r *TimestampedReading[T]) {
		fn(&r.Value)
		r.LastUpdateAt = time.Now().UTC()
	})
}
