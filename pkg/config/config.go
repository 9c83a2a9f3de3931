// Package config loads and validates the namesrv server configuration.
//
// Configuration sources, in precedence order:
//  1. Environment variables (NAMESRV_*), for keys the configuration file
//     sets
//  2. Configuration file (YAML, found at the XDG config location or an
//     explicit --config path)
//  3. Default values (lowest priority)
//
// Without a configuration file, environment variables are not read and
// only the default values apply.
//
// Adapted from the teacher's pkg/config: same viper + mapstructure +
// validator/v10 pipeline, trimmed to the sections a name service needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rocketmq-go/namesrv/internal/bytesize"
)

// Config is the root namesrv configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Scavenger ScavengerConfig `mapstructure:"scavenger" yaml:"scavenger"`
	Namesrv   NamesrvConfig   `mapstructure:"namesrv" yaml:"namesrv"`

	// ShutdownTimeout is loaded, defaulted and validated, but the start
	// command does not read it: the query API, metrics server and
	// telemetry shutdowns each use a fixed 5-second timeout, and stopping
	// the scavenger has none.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,min=0,max=1" yaml:"sample_rate"`
}

// ServerConfig controls the listener addresses.
type ServerConfig struct {
	// ListenAddr is the host:port brokers dial for registration,
	// heartbeat, and route pickup (the chi-routed HTTP control API,
	// see pkg/queryapi).
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// MaxRegisterBodySize bounds a single broker registration request
	// body (it carries a full TopicConfigAndMappingSerializeWrapper, one
	// row per topic the broker serves). Accepts human-readable forms
	// like "2Mi" via bytesize.ByteSize's UnmarshalText.
	MaxRegisterBodySize bytesize.ByteSize `mapstructure:"max_register_body_size" yaml:"max_register_body_size"`
}

// MetricsConfig controls the Prometheus metrics HTTP server. When
// Enabled is false, no metrics are collected (zero overhead): RIM
// construction gets a nil RIMMetrics and every call site's nil-check
// becomes a no-op.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port serving GET /metrics, separate from
	// Server.ListenAddr.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ScavengerConfig controls the background broker-expiry sweep (spec §4.5).
type ScavengerConfig struct {
	// ScanInterval is how often ScanNotActiveBroker runs.
	ScanInterval time.Duration `mapstructure:"scan_interval" validate:"omitempty,gt=0" yaml:"scan_interval"`
}

// NamesrvConfig holds the three booleans spec §6 requires the name
// service to expose as configuration.
type NamesrvConfig struct {
	DeleteTopicWithBrokerRegistration bool `mapstructure:"delete_topic_with_broker_registration" yaml:"delete_topic_with_broker_registration"`
	SupportActingMaster               bool `mapstructure:"support_acting_master" yaml:"support_acting_master"`
	NotifyMinBrokerIdChanged          bool `mapstructure:"notify_min_broker_id_changed" yaml:"notify_min_broker_id_changed"`
}

// GetDefaultConfig returns a Config populated with every default value.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with sensible defaults. Called
// after loading from file and environment so only genuinely-unset fields
// are touched.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":9876"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.MaxRegisterBodySize == 0 {
		cfg.Server.MaxRegisterBodySize = 2 * bytesize.MiB
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9877
	}

	if cfg.Scavenger.ScanInterval == 0 {
		cfg.Scavenger.ScanInterval = 10 * time.Second
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// Load reads configuration from configPath (or the default XDG location
// when empty), merges environment overrides for the keys that file sets,
// applies defaults, and validates the result. When no file is found,
// environment variables are not read and only defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration, returning an error with operator-facing
// instructions when no config file is found at an explicit path.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create it first:\n  namesrv init --config %s", configPath, configPath)
		}
	}
	return Load(configPath)
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper wires environment-variable overrides (NAMESRV_SECTION_KEY)
// and config-file search paths.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NAMESRV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "namesrv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "namesrv")
}

// DefaultConfigPath returns the path Load searches by default.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(DefaultConfigPath())
	return err == nil
}

// configDecodeHooks returns a combined decode hook for the custom types
// this config uses: ByteSize and time.Duration.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize,
// so config files can use human-readable sizes like "2Mi" or "500KB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}
