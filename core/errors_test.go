package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ProbeError
		want string
	}{
		{
			name: "op with name",
			err:  &ProbeError{Op: "board.EncodeReading", Name: "a", Err: ErrNotFound},
			want: "board.EncodeReading [a]: instrument not found",
		},
		{
			name: "op without name",
			err:  &ProbeError{Op: "publisher.Run", Err: ErrChannelBroken},
			want: "publisher.Run: control queue broken",
		},
		{
			name: "bare wrapped error",
			err:  &ProbeError{Err: ErrPoisoned},
			want: "instrument poisoned",
		},
		{
			name: "kind only",
			err:  &ProbeError{Kind: "sink"},
			want: "sink error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestProbeError_Unwrap(t *testing.T) {
	err := NewProbeError("op", "kind", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(NewProbeError("op", "board", ErrNotFound)))
	assert.False(t, IsNotFound(ErrSerialization))

	assert.True(t, IsFatal(ErrChannelBroken))
	assert.True(t, IsFatal(ErrNotConnected))
	assert.True(t, IsFatal(ErrPublishTimeout))
	assert.False(t, IsFatal(ErrNotFound))
	assert.False(t, IsFatal(ErrSerialization))

	assert.True(t, IsConfigurationError(ErrMissingConfiguration))
	assert.False(t, IsConfigurationError(ErrPoisoned))
}
