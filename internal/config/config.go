package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// globalConfig holds the configuration most recently loaded via
// LoadWithOverrides, so packages that don't carry their own reference (the
// connector never does; it's only ever handed a connector.Config directly)
// can still read the harness-level settings cmd/relay loaded at startup.
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the relay harness's configuration. It has no bearing on the
// protocol core (internal/connector takes its own plain Go struct), and
// exists purely so cmd/relay has somewhere to keep its listen address, RDP
// defaults, and logging level.
type Config struct {
	Server   ServerConfig   `json:"server"`
	RDP      RDPConfig      `json:"rdp"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// LoadOptions carries command-line flag values that take precedence over
// both the environment and the struct tag defaults below.
type LoadOptions struct {
	Host              string
	Port              string
	LogLevel          string
	ConfigFile        string
	SkipTLSValidation bool
	TLSServerName     string
	UseNLA            bool
}

// ServerConfig holds the relay's own listen settings.
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port         string        `env:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

// RDPConfig holds the default connection parameters a session request may
// omit (see cmd/relay's sessionRequest).
type RDPConfig struct {
	DefaultWidth  int           `env:"RDP_DEFAULT_WIDTH" default:"1024"`
	DefaultHeight int           `env:"RDP_DEFAULT_HEIGHT" default:"768"`
	MaxWidth      int           `env:"RDP_MAX_WIDTH" default:"3840"`
	MaxHeight     int           `env:"RDP_MAX_HEIGHT" default:"2160"`
	BufferSize    int           `env:"RDP_BUFFER_SIZE" default:"65536"`
	Timeout       time.Duration `env:"RDP_TIMEOUT" default:"10s"`
}

// SecurityConfig holds TLS and connection-admission settings for the relay.
type SecurityConfig struct {
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" default:""`
	MaxConnections     int      `env:"MAX_CONNECTIONS" default:"100"`
	EnableRateLimit    bool     `env:"ENABLE_RATE_LIMIT" default:"true"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" default:"60"`
	EnableTLS          bool     `env:"ENABLE_TLS" default:"false"`
	TLSCertFile        string   `env:"TLS_CERT_FILE" default:""`
	TLSKeyFile         string   `env:"TLS_KEY_FILE" default:""`
	MinTLSVersion      string   `env:"MIN_TLS_VERSION" default:"1.2"`
	SkipTLSValidation  bool     `env:"SKIP_TLS_VALIDATION" default:"false"`
	TLSServerName      string   `env:"TLS_SERVER_NAME" default:""`
	// UseNLA is on by default; CredSSP/NLA is the only security upgrade
	// path this connector's auth collaborator implements.
	UseNLA bool `env:"USE_NLA" default:"true"`
}

// LoggingConfig mirrors internal/logging's level/format knobs.
type LoggingConfig struct {
	Level        string `env:"LOG_LEVEL" default:"info"`
	Format       string `env:"LOG_FORMAT" default:"text"`
	EnableCaller bool   `env:"LOG_ENABLE_CALLER" default:"false"`
	File         string `env:"LOG_FILE" default:""`
}

// Load loads configuration from the environment with no flag overrides.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides populates a Config from struct-tag defaults, then the
// environment, then opts, in increasing order of precedence, validates the
// result, and stashes it as the process-wide GetGlobalConfig value.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	if err := loadFromEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	applyOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg, nil
}

// GetGlobalConfig returns the configuration most recently loaded by
// LoadWithOverrides, or nil if nothing has loaded one yet.
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// loadFromEnv walks v's fields by reflection, recursing into embedded
// config sections and, for each leaf field carrying an `env` tag, setting
// it from that environment variable or its `default` tag when the
// variable is unset. Keeping the lookup table in the struct tags (rather
// than a parallel block of getXWithDefault calls per field, one drift away
// from the tags beside it) means adding a setting only means adding a
// field.
func loadFromEnv(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		envKey, hasEnv := field.Tag.Lookup("env")
		if !hasEnv {
			if fv.Kind() == reflect.Struct {
				if err := loadFromEnv(fv); err != nil {
					return err
				}
			}
			continue
		}

		raw := os.Getenv(envKey)
		if raw == "" {
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := setField(fv, raw); err != nil {
			return fmt.Errorf("%s=%q: %w", envKey, raw, err)
		}
	}
	return nil
}

func setField(fv reflect.Value, raw string) error {
	if fv.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.String {
			fv.Set(reflect.ValueOf(splitString(raw, ",")))
			return nil
		}
		return fmt.Errorf("unsupported slice element kind %s", fv.Type().Elem().Kind())
	default:
		return fmt.Errorf("unsupported config field kind %s", fv.Kind())
	}
	return nil
}

// applyOverrides layers opts on top of whatever loadFromEnv already set,
// giving explicit flags the final word. UseNLA only ever forces NLA on
// (there's no "-no-nla" flag); everything else is a plain non-zero-wins.
func applyOverrides(cfg *Config, opts LoadOptions) {
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port != "" {
		cfg.Server.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.SkipTLSValidation {
		cfg.Security.SkipTLSValidation = true
	}
	if opts.TLSServerName != "" {
		cfg.Security.TLSServerName = opts.TLSServerName
	}
	if opts.UseNLA {
		cfg.Security.UseNLA = true
	}
}

// Validate rejects a loaded Config that the relay harness or the connector
// it drives could not sensibly act on.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.RDP.DefaultWidth <= 0 || c.RDP.DefaultHeight <= 0 {
		return fmt.Errorf("default dimensions must be positive")
	}
	if c.RDP.MaxWidth < c.RDP.DefaultWidth || c.RDP.MaxHeight < c.RDP.DefaultHeight {
		return fmt.Errorf("max dimensions must be >= default dimensions")
	}
	if c.RDP.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}

	if c.Security.EnableTLS {
		if c.Security.TLSCertFile == "" || c.Security.TLSKeyFile == "" {
			return fmt.Errorf("TLS certificate and key files must be specified when TLS is enabled")
		}
		if _, err := os.Stat(c.Security.TLSCertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file does not exist: %s", c.Security.TLSCertFile)
		}
		if _, err := os.Stat(c.Security.TLSKeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file does not exist: %s", c.Security.TLSKeyFile)
		}
	}
	if c.Security.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.Security.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limit per minute must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func splitString(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
