// Package redispub provides a Redis-backed publish sink.
//
// Readings are delivered with PUBLISH so live subscribers see every
// change, and — when the retain option is set — additionally stored
// under a namespaced key with SET, so late consumers can read the last
// known state the same way MQTT retained messages allow. Keys are
// prefixed with the configured namespace to prevent collisions with
// application data.
package redispub

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/itsneelabh/goprobe/core"
)

// DefaultNamespace prefixes retained keys when none is configured.
const DefaultNamespace = "goprobe"

// Sink publishes instrument readings to Redis. It implements core.Sink.
type Sink struct {
	client    *redis.Client
	namespace string
	logger    core.Logger
}

// NewSink creates a Redis sink and verifies connectivity with a ping.
func NewSink(cfg core.RedisConfig, logger core.Logger) (*Sink, error) {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required: %w", core.ErrMissingConfiguration)
	}

	redisOpt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", core.ErrInvalidConfiguration)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	client := redis.NewClient(redisOpt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", core.ErrNotConnected)
	}

	logger.Debug("Redis sink connected", map[string]interface{}{
		"redis_url": cfg.URL,
		"namespace": namespace,
	})

	return &Sink{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}, nil
}

// Publish implements core.Sink. The topic doubles as the pub/sub
// channel name; with the retain option set, the payload is also stored
// under the retained key for the topic.
func (s *Sink) Publish(ctx context.Context, topic string, payload []byte, opts core.PublishOptions) error {
	if err := s.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s failed: %w", topic, err)
	}
	if opts.Retain {
		if err := s.client.Set(ctx, s.retainedKey(topic), payload, 0).Err(); err != nil {
			return fmt.Errorf("redis retain for %s failed: %w", topic, err)
		}
	}
	return nil
}

// Retained returns the last payload retained for a topic, or
// core.ErrNotFound if nothing was retained.
func (s *Sink) Retained(ctx context.Context, topic string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.retainedKey(topic)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("no retained payload for %s: %w", topic, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get retained %s failed: %w", topic, err)
	}
	return payload, nil
}

// Close releases the Redis connection.
func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) retainedKey(topic string) string {
	return s.namespace + ":retained:" + topic
}
