package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "goprobe", cfg.Name)
	assert.Equal(t, "json", cfg.Encoding)
	assert.True(t, cfg.Retain)
	assert.Equal(t, 256, cfg.QueueSize)
	assert.Equal(t, 15*time.Second, cfg.MQTT.KeepAlive)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GOPROBE_NAME", "env-name")
	t.Setenv("GOPROBE_ENCODING", "yaml")
	t.Setenv("GOPROBE_RETAIN", "false")
	t.Setenv("GOPROBE_QUEUE_SIZE", "32")
	t.Setenv("GOPROBE_MQTT_BROKER_URL", "tcp://env-broker:1883")
	t.Setenv("GOPROBE_MQTT_KEEP_ALIVE", "30s")
	t.Setenv("GOPROBE_REDIS_URL", "redis://env-redis:6379")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-name", cfg.Name)
	assert.Equal(t, "yaml", cfg.Encoding)
	assert.False(t, cfg.Retain)
	assert.Equal(t, 32, cfg.QueueSize)
	assert.Equal(t, "tcp://env-broker:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, 30*time.Second, cfg.MQTT.KeepAlive)
	assert.Equal(t, "redis://env-redis:6379", cfg.Redis.URL)
}

func TestNewConfig_OptionsBeatEnvironment(t *testing.T) {
	t.Setenv("GOPROBE_MQTT_BROKER_URL", "tcp://env-broker:1883")

	cfg, err := NewConfig(
		WithBrokerURL("tcp://option-broker:1883"),
		WithName("opt"),
		WithTopicPrefix("app/"),
		WithMQTTCredentials("user", "pass"),
	)
	require.NoError(t, err)

	assert.Equal(t, "tcp://option-broker:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, "opt", cfg.Name)
	assert.Equal(t, "app/", cfg.TopicPrefix)
	assert.Equal(t, "user", cfg.MQTT.Username)
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "bad encoding", opts: []Option{WithEncoding("xml")}},
		{name: "bad queue size", opts: []Option{WithQueueSize(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestConfig_LoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goprobe.yaml")
	content := []byte(`
name: from-file
encoding: yaml
topic_prefix: plant/
mqtt:
  broker_url: tcp://file-broker:1883
  keep_alive: 45s
redis:
  url: redis://file-redis:6379
  namespace: plant
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewConfig(WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, "yaml", cfg.Encoding)
	assert.Equal(t, "plant/", cfg.TopicPrefix)
	assert.Equal(t, "tcp://file-broker:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, 45*time.Second, cfg.MQTT.KeepAlive)
	assert.Equal(t, "plant", cfg.Redis.Namespace)
	// Untouched fields keep defaults.
	assert.Equal(t, 256, cfg.QueueSize)
}

func TestConfig_LoadConfigFileMissing(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

// A bad config file surfaces as an error from NewConfig, like any
// other option failure.
func TestNewConfig_ConfigFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewConfig(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goprobe.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mqtt: [not a mapping"), 0o600))
		_, err := NewConfig(WithConfigFile(path))
		assert.Error(t, err)
	})
}

func TestConfig_TopicFormatter(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "name", cfg.TopicFormatter().FormatTopic("name"))

	cfg, err = NewConfig(WithTopicPrefix("app/"))
	require.NoError(t, err)
	assert.Equal(t, "app/name", cfg.TopicFormatter().FormatTopic("name"))
}
