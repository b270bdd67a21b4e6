package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Voice Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Database   DatabaseConfig   `yaml:"database"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	Controller ControllerConfig `yaml:"controller"`
	Session    SessionConfig    `yaml:"session"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig contains deployment-specific identification.
type ServiceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings for the session store
// and audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains settings for the live event stream.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// ControllerConfig contains settings for the outbound home-automation
// controller connection. The token must come from the environment in
// production (VOICECORE_CONTROLLER_TOKEN), never from this file.
type ControllerConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig contains session quota and expiry settings.
type SessionConfig struct {
	// MaxCommands is the per-session command cap. Further commands are
	// rejected with a quota error until a new session is started.
	MaxCommands int `yaml:"max_commands"`

	// IdleTimeoutMinutes is the idle window after which a session expires.
	IdleTimeoutMinutes int `yaml:"idle_timeout_minutes"`

	// MaxDurationMinutes caps the total lifetime of a session regardless
	// of activity.
	MaxDurationMinutes int `yaml:"max_duration_minutes"`

	// SweepIntervalMinutes is how often expired session rows are purged.
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

// PipelineConfig contains settings for command interpretation.
type PipelineConfig struct {
	// RulesFile is the path to the intent rule table YAML.
	RulesFile string `yaml:"rules_file"`

	// LexiconFile is the path to the entity lexicon YAML.
	LexiconFile string `yaml:"lexicon_file"`

	// Limits bounds numeric command parameters.
	Limits LimitsConfig `yaml:"limits"`
}

// LimitsConfig bounds the numeric slots a command may carry.
type LimitsConfig struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	BrightnessMin  float64 `yaml:"brightness_min"`
	BrightnessMax  float64 `yaml:"brightness_max"`
}

// MQTTConfig contains MQTT broker connection settings for event publishing.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for pipeline telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: VOICECORE_SECTION_KEY
// For example: VOICECORE_DATABASE_PATH, VOICECORE_CONTROLLER_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:       "voicecore-001",
			Name:     "Voice Core",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/voicecore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/api/v1/events",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Controller: ControllerConfig{
			TimeoutSeconds: 10,
		},
		Session: SessionConfig{
			MaxCommands:          100,
			IdleTimeoutMinutes:   30,
			MaxDurationMinutes:   1440,
			SweepIntervalMinutes: 15,
		},
		Pipeline: PipelineConfig{
			RulesFile:   "configs/rules.yaml",
			LexiconFile: "configs/lexicon.yaml",
			Limits: LimitsConfig{
				TemperatureMin: 50,
				TemperatureMax: 90,
				BrightnessMin:  0,
				BrightnessMax:  255,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "voicecore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VOICECORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("VOICECORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("VOICECORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Controller. The token should always come from the environment in
	// production so it never sits in a config file on disk.
	if v := os.Getenv("VOICECORE_CONTROLLER_URL"); v != "" {
		cfg.Controller.BaseURL = v
	}
	if v := os.Getenv("VOICECORE_CONTROLLER_TOKEN"); v != "" {
		cfg.Controller.Token = v
	}

	// MQTT
	if v := os.Getenv("VOICECORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("VOICECORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("VOICECORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("VOICECORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Controller validation. The dispatcher cannot function without a
	// target URL and a bearer token for the controller's REST API.
	if c.Controller.BaseURL == "" {
		errs = append(errs, "controller.base_url is required (set VOICECORE_CONTROLLER_URL environment variable)")
	}
	if c.Controller.Token == "" {
		errs = append(errs, "controller.token is required (set VOICECORE_CONTROLLER_TOKEN environment variable)")
	}
	if c.Controller.TimeoutSeconds < 1 {
		errs = append(errs, "controller.timeout_seconds must be at least 1")
	}

	// Session validation
	if c.Session.MaxCommands < 1 {
		errs = append(errs, "session.max_commands must be at least 1")
	}
	if c.Session.IdleTimeoutMinutes < 1 {
		errs = append(errs, "session.idle_timeout_minutes must be at least 1")
	}
	if c.Session.MaxDurationMinutes < c.Session.IdleTimeoutMinutes {
		errs = append(errs, "session.max_duration_minutes must be at least the idle timeout")
	}

	// Pipeline validation
	if c.Pipeline.RulesFile == "" {
		errs = append(errs, "pipeline.rules_file is required")
	}
	if c.Pipeline.LexiconFile == "" {
		errs = append(errs, "pipeline.lexicon_file is required")
	}
	if c.Pipeline.Limits.TemperatureMin >= c.Pipeline.Limits.TemperatureMax {
		errs = append(errs, "pipeline.limits.temperature_min must be below temperature_max")
	}
	if c.Pipeline.Limits.BrightnessMin >= c.Pipeline.Limits.BrightnessMax {
		errs = append(errs, "pipeline.limits.brightness_min must be below brightness_max")
	}

	// MQTT validation (only when enabled)
	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// ControllerTimeout returns the outbound controller request timeout.
func (c *Config) ControllerTimeout() time.Duration {
	return time.Duration(c.Controller.TimeoutSeconds) * time.Second
}

// IdleWindow returns the session idle expiry window.
func (c *SessionConfig) IdleWindow() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// MaxDuration returns the total session lifetime cap.
func (c *SessionConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions are purged.
func (c *SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
