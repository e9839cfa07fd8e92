// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package config loads the service configuration from defaults, a YAML file,
// the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/ivanlelis-27/amesco-plus-be/internal/token"
	"github.com/ivanlelis-27/amesco-plus-be/internal/xdg"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: AMESCO_DATABASE__URL sets database.url.
const EnvPrefix = "AMESCO_"

// Default values.
const (
	DefaultHTTPAddr         = ":8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultJWTIssuer        = "amesco-plus"
	DefaultJWTTTL           = 24 * time.Hour
	DefaultLogFormat        = "json"
	DefaultLogLevel         = "info"
	DefaultMetricsAddr      = "127.0.0.1:9100"
	DefaultSampleRate       = 1.0
	DefaultSMTPPort         = 587
	DefaultSMTPSenderName   = "Amesco Plus"
	DefaultResetMaxAttempts = 5
	DefaultResetWindow      = 15 * time.Minute
)

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http" json:"http,omitempty"`
	Database DatabaseConfig `koanf:"database" json:"database,omitempty"`
	JWT      JWTConfig      `koanf:"jwt" json:"jwt,omitempty"`
	Log      LogConfig      `koanf:"log" json:"log,omitempty"`
	Metrics  MetricsConfig  `koanf:"metrics" json:"metrics,omitempty"`
	Tracing  TracingConfig  `koanf:"tracing" json:"tracing,omitempty"`
	SMTP     SMTPConfig     `koanf:"smtp" json:"smtp,omitempty"`
	Redis    RedisConfig    `koanf:"redis" json:"redis,omitempty"`
	Reset    ResetConfig    `koanf:"reset" json:"reset,omitempty"`
	Migrate  MigrateConfig  `koanf:"migrate" json:"migrate,omitempty"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr            string        `koanf:"addr" json:"addr,omitempty" jsonschema:"description=Listen address of the JSON API"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout,omitempty"`
	CORSOrigins     []string      `koanf:"cors_origins" json:"cors_origins,omitempty" jsonschema:"description=Allowed browser origins; empty allows any"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL string `koanf:"url" json:"url,omitempty" jsonschema:"description=PostgreSQL connection URL"`
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	Secret string        `koanf:"secret" json:"secret,omitempty" jsonschema:"minLength=32"`
	Issuer string        `koanf:"issuer" json:"issuer,omitempty"`
	TTL    time.Duration `koanf:"ttl" json:"ttl,omitempty"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=warning,enum=error"`
}

// MetricsConfig configures the metrics and health listener. An empty
// address disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint   string  `koanf:"endpoint" json:"endpoint,omitempty" jsonschema:"description=OTLP/HTTP endpoint URL; empty disables export"`
	SampleRate float64 `koanf:"sample_rate" json:"sample_rate,omitempty" jsonschema:"minimum=0,maximum=1"`
}

// SMTPConfig configures outgoing mail. An empty host logs messages instead
// of sending them.
type SMTPConfig struct {
	Host        string `koanf:"host" json:"host,omitempty"`
	Port        int    `koanf:"port" json:"port,omitempty" jsonschema:"minimum=1,maximum=65535"`
	Username    string `koanf:"username" json:"username,omitempty"`
	Password    string `koanf:"password" json:"password,omitempty"`
	SenderName  string `koanf:"sender_name" json:"sender_name,omitempty"`
	SenderEmail string `koanf:"sender_email" json:"sender_email,omitempty"`
}

// RedisConfig locates the Redis used for forgot-password throttling. An
// empty address disables throttling.
type RedisConfig struct {
	Addr     string `koanf:"addr" json:"addr,omitempty"`
	Password string `koanf:"password" json:"password,omitempty"`
	DB       int    `koanf:"db" json:"db,omitempty" jsonschema:"minimum=0"`
}

// ResetConfig bounds forgot-password requests per address.
type ResetConfig struct {
	MaxAttempts int           `koanf:"max_attempts" json:"max_attempts,omitempty" jsonschema:"minimum=1"`
	Window      time.Duration `koanf:"window" json:"window,omitempty"`
}

// MigrateConfig controls schema migration at startup.
type MigrateConfig struct {
	Auto bool `koanf:"auto" json:"auto,omitempty" jsonschema:"description=Apply pending migrations before serving"`
}

// defaults returns the lowest-precedence layer.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":             DefaultHTTPAddr,
		"http.shutdown_timeout": DefaultShutdownTimeout,
		"jwt.issuer":            DefaultJWTIssuer,
		"jwt.ttl":               DefaultJWTTTL,
		"log.format":            DefaultLogFormat,
		"log.level":             DefaultLogLevel,
		"metrics.addr":          DefaultMetricsAddr,
		"tracing.sample_rate":   DefaultSampleRate,
		"smtp.port":             DefaultSMTPPort,
		"smtp.sender_name":      DefaultSMTPSenderName,
		"reset.max_attempts":    DefaultResetMaxAttempts,
		"reset.window":          DefaultResetWindow,
		"migrate.auto":          false,
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":    "http.addr",
	"database-url": "database.url",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"metrics-addr": "metrics.addr",
	"migrate-auto": "migrate.auto",
}

// BindFlags registers the configuration flags on fs. Only flags the user
// sets override the file and environment.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "API listen address")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("log-format", DefaultLogFormat, "log format (json, text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics and health listen address (empty disables)")
	fs.Bool("migrate-auto", false, "apply pending migrations before serving")
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Path is the YAML file. Empty means the XDG default, which may be absent.
	Path string
	// EnvFile is a dotenv file loaded into the environment first. Empty
	// means ".env"; a missing file is ignored.
	EnvFile string
	// Flags, when set, is the highest-precedence layer.
	Flags *pflag.FlagSet
	// Partial only requires the database URL, for commands that do not serve.
	Partial bool
}

// Load builds the configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if err := loadFile(k, opts.Path); err != nil {
		return nil, err
	}

	if err := loadDotenv(opts.EnvFile); err != nil {
		return nil, err
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if opts.Flags != nil {
		p := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode").Wrap(err)
	}
	if opts.Partial {
		if cfg.Database.URL == "" {
			return nil, invalid("database.url", "database url is required")
		}
		return &cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile validates and merges the YAML file. Only an explicitly named
// file must exist.
func loadFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}

	if err := ValidateSchema(data); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}

	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", path).Wrap(err)
	}
	return nil
}

func loadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// envValue turns AMESCO_HTTP__SHUTDOWN_TIMEOUT into http.shutdown_timeout.
// List values are comma separated.
func envValue(name, value string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
	if key == "http.cors_origins" {
		var origins []string
		for o := range strings.SplitSeq(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return key, origins
	}
	return key, value
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	switch {
	case c.HTTP.Addr == "":
		return invalid("http.addr", "http address is required")
	case c.HTTP.ShutdownTimeout <= 0:
		return invalid("http.shutdown_timeout", "shutdown timeout must be positive")
	case c.Database.URL == "":
		return invalid("database.url", "database url is required")
	case len(c.JWT.Secret) < token.MinSecretLength:
		return invalid("jwt.secret", "jwt secret must be at least 32 bytes")
	case c.JWT.TTL <= 0:
		return invalid("jwt.ttl", "jwt ttl must be positive")
	case c.Log.Format != "json" && c.Log.Format != "text":
		return invalid("log.format", "log format must be 'json' or 'text'")
	case c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1:
		return invalid("tracing.sample_rate", "sample rate must be between 0 and 1")
	case c.SMTP.Host != "" && c.SMTP.SenderEmail == "":
		return invalid("smtp.sender_email", "sender email is required when smtp host is set")
	case c.Reset.MaxAttempts <= 0:
		return invalid("reset.max_attempts", "max attempts must be positive")
	case c.Reset.Window <= 0:
		return invalid("reset.window", "reset window must be positive")
	}
	return nil
}

func invalid(field, msg string) error {
	return oops.Code("CONFIG_INVALID").With("field", field).Errorf("%s", msg)
}
