package redispub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/goprobe/core"
)

func newTestSink(t *testing.T, namespace string) (*Sink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewSink(core.RedisConfig{
		URL:       "redis://" + mr.Addr(),
		Namespace: namespace,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestNewSink_RequiresURL(t *testing.T) {
	_, err := NewSink(core.RedisConfig{}, nil)
	assert.ErrorIs(t, err, core.ErrMissingConfiguration)
}

func TestNewSink_InvalidURL(t *testing.T) {
	_, err := NewSink(core.RedisConfig{URL: "not-a-url"}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestNewSink_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewSink(core.RedisConfig{URL: "redis://" + addr}, nil)
	assert.ErrorIs(t, err, core.ErrNotConnected)
}

func TestSink_PublishReachesSubscribers(t *testing.T) {
	s, mr := newTestSink(t, "")
	ctx := context.Background()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()
	pubsub := sub.Subscribe(ctx, "value/main")
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Publish(ctx, "value/main", []byte(`{"indicator":1}`), core.PublishOptions{}))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, "value/main", msg.Channel)
		assert.JSONEq(t, `{"indicator":1}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive the published payload")
	}
}

func TestSink_RetainStoresLastPayload(t *testing.T) {
	s, _ := newTestSink(t, "plant")
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, "value/main", []byte(`{"indicator":1}`), core.PublishOptions{Retain: true}))
	require.NoError(t, s.Publish(ctx, "value/main", []byte(`{"indicator":2}`), core.PublishOptions{Retain: true}))

	payload, err := s.Retained(ctx, "value/main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"indicator":2}`, string(payload), "retained payload is the last one published")
}

func TestSink_RetainedNamespacing(t *testing.T) {
	s, mr := newTestSink(t, "plant")
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, "a", []byte("x"), core.PublishOptions{Retain: true}))

	got, err := mr.Get("plant:retained:a")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestSink_NoRetainWithoutOption(t *testing.T) {
	s, _ := newTestSink(t, "")
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, "a", []byte("x"), core.PublishOptions{}))

	_, err := s.Retained(ctx, "a")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSink_DefaultNamespace(t *testing.T) {
	s, mr := newTestSink(t, "")
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, "a", []byte("x"), core.PublishOptions{Retain: true}))

	_, err := mr.Get(DefaultNamespace + ":retained:a")
	require.NoError(t, err)
}
