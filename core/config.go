package core

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the instrumentation toolkit.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithName("sensor-gateway"),
//	    core.WithBrokerURL("tcp://broker:1883"),
//	    core.WithRetain(true),
//	)
type Config struct {
	// Name identifies this process in logs and as the default MQTT
	// client ID prefix.
	Name string

	// Encoding selects the wire encoding: "json" or "yaml".
	Encoding string

	// Retain requests sink-side retention of last payloads.
	Retain bool

	// QueueSize bounds the publisher control queue.
	QueueSize int

	// TopicPrefix, when set, is prepended to every instrument name to
	// form the publish topic.
	TopicPrefix string

	MQTT    MQTTConfig
	Redis   RedisConfig
	Logging LoggingConfig

	// loadErr carries a config-file load failure from WithConfigFile
	// until NewConfig can surface it.
	loadErr error
}

// MQTTConfig contains MQTT sink configuration. Reconnection policy
// belongs to the sink; the publisher never sees it.
type MQTTConfig struct {
	BrokerURL            string
	ClientID             string
	Username             string
	Password             string
	QoS                  byte
	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	PublishTimeout       time.Duration
	ConnectRetryInterval time.Duration
	MaxReconnectInterval time.Duration
}

// RedisConfig contains Redis sink configuration.
type RedisConfig struct {
	URL       string
	Namespace string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// Option is a functional option for Config
type Option func(*Config)

// NewConfig creates a Config with defaults, environment variables, and
// options applied in that order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := defaultConfig()
	cfg.applyEnvironment()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.loadErr != nil {
		return nil, cfg.loadErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Name:      "goprobe",
		Encoding:  "json",
		Retain:    true,
		QueueSize: 256,
		MQTT: MQTTConfig{
			QoS:                  1,
			KeepAlive:            15 * time.Second,
			ConnectTimeout:       5 * time.Second,
			PublishTimeout:       2 * time.Second,
			ConnectRetryInterval: 2 * time.Second,
			MaxReconnectInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// applyEnvironment overlays GOPROBE_* environment variables.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("GOPROBE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("GOPROBE_ENCODING"); v != "" {
		c.Encoding = v
	}
	if v := os.Getenv("GOPROBE_RETAIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Retain = b
		}
	}
	if v := os.Getenv("GOPROBE_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.QueueSize = n
		}
	}
	if v := os.Getenv("GOPROBE_TOPIC_PREFIX"); v != "" {
		c.TopicPrefix = v
	}
	if v := os.Getenv("GOPROBE_MQTT_BROKER_URL"); v != "" {
		c.MQTT.BrokerURL = v
	}
	if v := os.Getenv("GOPROBE_MQTT_CLIENT_ID"); v != "" {
		c.MQTT.ClientID = v
	}
	if v := os.Getenv("GOPROBE_MQTT_KEEP_ALIVE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MQTT.KeepAlive = d
		}
	}
	if v := os.Getenv("GOPROBE_REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("GOPROBE_REDIS_NAMESPACE"); v != "" {
		c.Redis.Namespace = v
	}
	if v := os.Getenv("GOPROBE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOPROBE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Encoding {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown encoding %q (want json or yaml): %w",
			c.Encoding, ErrInvalidConfiguration)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d: %w",
			c.QueueSize, ErrInvalidConfiguration)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d: %w",
			c.MQTT.QoS, ErrInvalidConfiguration)
	}
	return nil
}

// fileConfig is the YAML schema for LoadConfigFile. Pointer fields
// distinguish "absent" from "zero" so absent fields keep their current
// values; durations are strings ("15s") since YAML has no duration type.
type fileConfig struct {
	Name        *string `yaml:"name"`
	Encoding    *string `yaml:"encoding"`
	Retain      *bool   `yaml:"retain"`
	QueueSize   *int    `yaml:"queue_size"`
	TopicPrefix *string `yaml:"topic_prefix"`

	MQTT struct {
		BrokerURL            *string `yaml:"broker_url"`
		ClientID             *string `yaml:"client_id"`
		Username             *string `yaml:"username"`
		Password             *string `yaml:"password"`
		QoS                  *int    `yaml:"qos"`
		KeepAlive            *string `yaml:"keep_alive"`
		ConnectTimeout       *string `yaml:"connect_timeout"`
		PublishTimeout       *string `yaml:"publish_timeout"`
		ConnectRetryInterval *string `yaml:"connect_retry_interval"`
		MaxReconnectInterval *string `yaml:"max_reconnect_interval"`
	} `yaml:"mqtt"`

	Redis struct {
		URL       *string `yaml:"url"`
		Namespace *string `yaml:"namespace"`
	} `yaml:"redis"`

	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadConfigFile merges a YAML configuration file into c. Missing
// files are an error; fields absent from the file keep their current
// values.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w: %v", path, ErrInvalidConfiguration, err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setDuration := func(dst *time.Duration, src *string) error {
		if src == nil {
			return nil
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("parse duration %q in %s: %w", *src, path, ErrInvalidConfiguration)
		}
		*dst = d
		return nil
	}

	setString(&c.Name, file.Name)
	setString(&c.Encoding, file.Encoding)
	if file.Retain != nil {
		c.Retain = *file.Retain
	}
	if file.QueueSize != nil {
		c.QueueSize = *file.QueueSize
	}
	setString(&c.TopicPrefix, file.TopicPrefix)

	setString(&c.MQTT.BrokerURL, file.MQTT.BrokerURL)
	setString(&c.MQTT.ClientID, file.MQTT.ClientID)
	setString(&c.MQTT.Username, file.MQTT.Username)
	setString(&c.MQTT.Password, file.MQTT.Password)
	if file.MQTT.QoS != nil {
		c.MQTT.QoS = byte(*file.MQTT.QoS)
	}
	for _, d := range []struct {
		dst *time.Duration
		src *string
	}{
		{&c.MQTT.KeepAlive, file.MQTT.KeepAlive},
		{&c.MQTT.ConnectTimeout, file.MQTT.ConnectTimeout},
		{&c.MQTT.PublishTimeout, file.MQTT.PublishTimeout},
		{&c.MQTT.ConnectRetryInterval, file.MQTT.ConnectRetryInterval},
		{&c.MQTT.MaxReconnectInterval, file.MQTT.MaxReconnectInterval},
	} {
		if err := setDuration(d.dst, d.src); err != nil {
			return err
		}
	}

	setString(&c.Redis.URL, file.Redis.URL)
	setString(&c.Redis.Namespace, file.Redis.Namespace)
	setString(&c.Logging.Level, file.Logging.Level)
	setString(&c.Logging.Format, file.Logging.Format)
	return nil
}

// Functional options

// WithName sets the service name
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithEncoding selects the wire encoding ("json" or "yaml")
func WithEncoding(encoding string) Option {
	return func(c *Config) { c.Encoding = encoding }
}

// WithRetain sets the sink retention flag
func WithRetain(retain bool) Option {
	return func(c *Config) { c.Retain = retain }
}

// WithQueueSize sets the control queue capacity
func WithQueueSize(n int) Option {
	return func(c *Config) { c.QueueSize = n }
}

// WithTopicPrefix sets the topic namespace prefix
func WithTopicPrefix(prefix string) Option {
	return func(c *Config) { c.TopicPrefix = prefix }
}

// WithBrokerURL sets the MQTT broker URL
func WithBrokerURL(url string) Option {
	return func(c *Config) { c.MQTT.BrokerURL = url }
}

// WithMQTTClientID sets an explicit MQTT client ID
func WithMQTTClientID(id string) Option {
	return func(c *Config) { c.MQTT.ClientID = id }
}

// WithMQTTCredentials sets MQTT username and password
func WithMQTTCredentials(username, password string) Option {
	return func(c *Config) {
		c.MQTT.Username = username
		c.MQTT.Password = password
	}
}

// WithKeepAlive sets the MQTT keep-alive interval
func WithKeepAlive(d time.Duration) Option {
	return func(c *Config) { c.MQTT.KeepAlive = d }
}

// WithRedisURL sets the Redis sink URL
func WithRedisURL(url string) Option {
	return func(c *Config) { c.Redis.URL = url }
}

// WithRedisNamespace sets the Redis key namespace
func WithRedisNamespace(ns string) Option {
	return func(c *Config) { c.Redis.Namespace = ns }
}

// WithConfigFile merges a YAML config file. File values override
// defaults and environment but lose to later options. A missing or
// malformed file surfaces as an error from NewConfig.
func WithConfigFile(path string) Option {
	return func(c *Config) {
		if err := c.LoadConfigFile(path); err != nil && c.loadErr == nil {
			c.loadErr = err
		}
	}
}

// TopicFormatter returns the formatter implied by the configuration.
func (c *Config) TopicFormatter() TopicFormatter {
	if c.TopicPrefix != "" {
		return PrefixFormatter{Prefix: c.TopicPrefix}
	}
	return IdentityFormatter{}
}
