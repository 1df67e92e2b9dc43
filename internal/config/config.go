// Package config loads the server and CLI configuration from a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultSessionSecret is the placeholder cookie key. It is only accepted
// with server.debug set.
const DefaultSessionSecret = "change-me-in-production"

// EnvPrefix prefixes every environment override, e.g. MEDTRAVEL_SERVER_ADDR.
const EnvPrefix = "MEDTRAVEL"

// Config is the root configuration.
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server"`
	Translation TranslationConfig `json:"translation" yaml:"translation"`
	Storage     StorageConfig     `json:"storage" yaml:"storage"`
	Site        SiteConfig        `json:"site" yaml:"site"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr          string   `json:"addr" yaml:"addr"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	AdminToken    string   `json:"admin_token" yaml:"admin_token"`
	Debug         bool     `json:"debug" yaml:"debug"`
}

// TranslationConfig configures the translate endpoint and the page pipeline.
type TranslationConfig struct {
	Provider       string        `json:"provider" yaml:"provider"` // openai | mock
	OpenAIKey      string        `json:"openai_key" yaml:"openai_key"`
	OpenAIModel    string        `json:"openai_model" yaml:"openai_model"`
	OpenAIBaseURL  string        `json:"openai_base_url" yaml:"openai_base_url"`
	Style          string        `json:"style" yaml:"style"`
	CacheTTL       int           `json:"cache_ttl" yaml:"cache_ttl"` // seconds, 0 = never expire
	RedisURL       string        `json:"redis_url" yaml:"redis_url"`
	RateLimitRPM   int           `json:"rate_limit_rpm" yaml:"rate_limit_rpm"`
	VisitorRPM     int           `json:"visitor_rpm" yaml:"visitor_rpm"` // per client IP on /api/translate, 0 = off
	MaxRetries     int           `json:"max_retries" yaml:"max_retries"`
	BatchSize      int           `json:"batch_size" yaml:"batch_size"`
	BatchPause     time.Duration `json:"batch_pause" yaml:"batch_pause"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	SnapshotPath   string        `json:"snapshot_path" yaml:"snapshot_path"`
	SnapshotCron   string        `json:"snapshot_cron" yaml:"snapshot_cron"`
}

// StorageConfig configures on-disk state.
type StorageConfig struct {
	DatabasePath string `json:"database_path" yaml:"database_path"`
	UploadDir    string `json:"upload_dir" yaml:"upload_dir"`
}

// SiteConfig locates the site pages served through the pipeline.
type SiteConfig struct {
	PagesDir     string `json:"pages_dir" yaml:"pages_dir"`
	RootSelector string `json:"root_selector" yaml:"root_selector"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			CORSOrigins:   []string{"http://localhost:3000"},
			SessionSecret: DefaultSessionSecret,
		},
		Translation: TranslationConfig{
			Provider:       "openai",
			OpenAIModel:    "gpt-4o-mini",
			Style:          "medical",
			RateLimitRPM:   60,
			VisitorRPM:     120,
			MaxRetries:     2,
			BatchSize:      20,
			BatchPause:     100 * time.Millisecond,
			RequestTimeout: 10 * time.Second,
			SnapshotCron:   "@every 15m",
		},
		Storage: StorageConfig{
			DatabasePath: "data/medtravel.db",
			UploadDir:    "public/uploads",
		},
		Site: SiteConfig{
			PagesDir:     "site",
			RootSelector: "main",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (when non-empty) over the defaults and then applies
// environment overrides. OPENAI_API_KEY is honoured when no key is set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is operator-provided
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	overrideFromEnv(cfg, EnvPrefix)

	if cfg.Translation.OpenAIKey == "" {
		cfg.Translation.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(c.Server.SessionSecret) < 16 {
		errs = append(errs, errors.New("server.session_secret must be at least 16 characters"))
	} else if c.Server.SessionSecret == DefaultSessionSecret && !c.Server.Debug {
		errs = append(errs, errors.New("server.session_secret must be changed from the default outside debug mode"))
	}

	switch c.Translation.Provider {
	case "openai":
		if c.Translation.OpenAIKey == "" {
			errs = append(errs, errors.New("translation.openai_key (or OPENAI_API_KEY) is required for the openai provider"))
		}
	case "mock":
	default:
		errs = append(errs, fmt.Errorf("translation.provider %q must be openai or mock", c.Translation.Provider))
	}

	switch c.Translation.Style {
	case "", "neutral", "marketing", "medical":
	default:
		errs = append(errs, fmt.Errorf("translation.style %q must be neutral, marketing or medical", c.Translation.Style))
	}

	if c.Translation.BatchSize < 1 || c.Translation.BatchSize > 100 {
		errs = append(errs, fmt.Errorf("translation.batch_size %d must be between 1 and 100", c.Translation.BatchSize))
	}
	if c.Translation.BatchPause < 0 || c.Translation.RequestTimeout < 0 {
		errs = append(errs, errors.New("translation durations must not be negative"))
	}
	if c.Translation.CacheTTL < 0 || c.Translation.MaxRetries < 0 || c.Translation.RateLimitRPM < 0 || c.Translation.VisitorRPM < 0 {
		errs = append(errs, errors.New("translation counters must not be negative"))
	}
	if c.Translation.SnapshotPath != "" && c.Translation.SnapshotCron != "" {
		if _, err := cron.ParseStandard(c.Translation.SnapshotCron); err != nil {
			errs = append(errs, fmt.Errorf("translation.snapshot_cron: %w", err))
		}
	}

	if c.Storage.DatabasePath == "" {
		errs = append(errs, errors.New("storage.database_path is required"))
	}
	if c.Storage.UploadDir == "" {
		errs = append(errs, errors.New("storage.upload_dir is required"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}

	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideFromEnv walks v and replaces fields whose PREFIX_SECTION_FIELD
// environment variable is set. Names come from the yaml tags.
func overrideFromEnv(v any, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := typ.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		envKey := prefix + "_" + strings.ToUpper(strings.ReplaceAll(tag, "-", "_"))

		if field.Kind() == reflect.Struct {
			overrideFromEnv(field.Addr().Interface(), envKey)
			continue
		}

		envVal, ok := os.LookupEnv(envKey)
		if !ok || envVal == "" {
			continue
		}

		switch {
		case field.Type() == durationType:
			if d, err := time.ParseDuration(envVal); err == nil {
				field.SetInt(int64(d))
			}
		case field.Kind() == reflect.String:
			field.SetString(envVal)
		case field.Kind() == reflect.Int:
			if n, err := strconv.Atoi(envVal); err == nil {
				field.SetInt(int64(n))
			}
		case field.Kind() == reflect.Bool:
			if b, err := strconv.ParseBool(envVal); err == nil {
				field.SetBool(b)
			}
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			parts := strings.Split(envVal, ",")
			for j := range parts {
				parts[j] = strings.TrimSpace(parts[j])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
