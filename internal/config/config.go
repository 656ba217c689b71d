// Package config loads stepper settings from flags, STEPPER_* environment
// variables and an optional stepper.yaml file, in that order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: log.level is STEPPER_LOG_LEVEL.
const EnvPrefix = "STEPPER"

// FileName is the config file looked up in the working directory.
const FileName = "stepper"

// Sink kinds.
const (
	SinkLog    = "log"
	SinkMemory = "memory"
	SinkFile   = "file"
	SinkRedis  = "redis"
	SinkSQL    = "sql"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Catalog    string           `mapstructure:"catalog"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Gate       GateConfig       `mapstructure:"gate"`
	Transition TransitionConfig `mapstructure:"transition"`
	Session    SessionConfig    `mapstructure:"session"`
	Sink       SinkConfig       `mapstructure:"sink"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type GateConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxWidth int  `mapstructure:"max_width"`
}

type TransitionConfig struct {
	Duration time.Duration `mapstructure:"duration"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type SinkConfig struct {
	Kind      string        `mapstructure:"kind"`
	Dir       string        `mapstructure:"dir"`
	RedisURL  string        `mapstructure:"redis_url"`
	SQLDriver string        `mapstructure:"sql_driver"`
	SQLDSN    string        `mapstructure:"sql_dsn"`
	Timeout   time.Duration `mapstructure:"timeout"`

	// Mask lists patterns of question IDs whose answers are replaced before
	// delivery, e.g. "phone".
	Mask []string `mapstructure:"mask"`
	// EncryptionKey is a base64 AES-256 key. When set, answers reach the sink
	// sealed. FallbackKeys still open submissions sealed before a rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

// Keys decodes the encryption keys. The active key is nil when encryption is off.
func (c SinkConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(c.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("sink.encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("sink.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// New returns a viper instance carrying the defaults and environment binding.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("catalog", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("http.port", 8080)
	v.SetDefault("gate.enabled", true)
	v.SetDefault("gate.max_width", 480)
	v.SetDefault("transition.duration", 300*time.Millisecond)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("sink.kind", SinkLog)
	v.SetDefault("sink.dir", ".stepper/submissions")
	v.SetDefault("sink.redis_url", "redis://localhost:6379/0")
	v.SetDefault("sink.sql_driver", "sqlite")
	v.SetDefault("sink.sql_dsn", "")
	v.SetDefault("sink.timeout", 10*time.Second)
	v.SetDefault("sink.mask", []string{})
	v.SetDefault("sink.encryption_key", "")
	v.SetDefault("sink.fallback_keys", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or stepper.yaml from the working directory when file is
// empty) and decodes the merged settings. A missing default file is fine; a
// missing explicit file is an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.Gate.MaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("gate.max_width must be positive"))
	}
	if c.Transition.Duration < 0 {
		errs = append(errs, fmt.Errorf("transition.duration must not be negative"))
	}
	if c.Session.TTL < 0 || c.Session.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("session durations must not be negative"))
	}
	if c.Sink.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sink.timeout must be positive"))
	}

	if _, _, err := c.Sink.Keys(); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Sink.Mask {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("sink.mask %q: %w", p, err))
		}
	}

	switch c.Sink.Kind {
	case SinkLog, SinkMemory:
	case SinkFile:
		if c.Sink.Dir == "" {
			errs = append(errs, fmt.Errorf("sink.dir is required for the file sink"))
		}
	case SinkRedis:
		if c.Sink.RedisURL == "" {
			errs = append(errs, fmt.Errorf("sink.redis_url is required for the redis sink"))
		}
	case SinkSQL:
		if c.Sink.SQLDSN == "" {
			errs = append(errs, fmt.Errorf("sink.sql_dsn is required for the sql sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sink.kind %q", c.Sink.Kind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
