package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Provider exposes the settings the rest of the application reads.
type Provider interface {
	GetDenyListPath() string
	GetMaxExecutionTime() time.Duration
	GetMaxCallStackSize() int
	GetExposeTransport() bool
	GetHardenGlobals() bool
	GetCancelTransportOnStop() bool
	GetFeedURL() string
	GetServerAddr() string
	GetAllowedOrigins() []string
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
	GetTracingSampleRatio() float64
}

// Config holds all configuration for the application.
type Config struct {
	DenyListPath          string
	MaxExecutionTime      time.Duration `validate:"gte=0"`
	MaxCallStackSize      int           `validate:"gt=0"`
	ExposeTransport       bool
	HardenGlobals         bool
	CancelTransportOnStop bool
	FeedURL               string `validate:"omitempty,url"`
	ServerAddr            string   `validate:"required"`
	AllowedOrigins        []string `validate:"dive,required"`

	TracingEnabled     bool
	TracingServiceName string  `validate:"required"`
	TracingZipkinURL   string  `validate:"omitempty,url"`
	TracingSampleRatio float64 `validate:"gte=0,lte=1"`
}

// Defaults returns the configuration used when no variable is set.
func Defaults() Config {
	return Config{
		MaxExecutionTime:      5 * time.Second,
		MaxCallStackSize:      1000,
		HardenGlobals:         true,
		CancelTransportOnStop: true,
		ServerAddr:            ":8080",
		TracingServiceName:    "livetone",
		TracingZipkinURL:      "http://localhost:9411/api/v2/spans",
		TracingSampleRatio:    1,
	}
}

// New loads configuration from an optional .env file and environment
// variables, then validates it.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to Defaults.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Defaults()
	var err error

	if v, ok := lookup("LIVETONE_DENYLIST"); ok {
		cfg.DenyListPath = v
	}
	if v, ok := lookup("LIVETONE_FEED_URL"); ok {
		cfg.FeedURL = v
	}
	if v, ok := lookup("LIVETONE_SERVER_ADDR"); ok && v != "" {
		cfg.ServerAddr = v
	}
	if v, ok := lookup("LIVETONE_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(origin))
		}
	}
	if v, ok := lookup("LIVETONE_TRACING_SERVICE_NAME"); ok && v != "" {
		cfg.TracingServiceName = v
	}
	if v, ok := lookup("LIVETONE_TRACING_ZIPKIN_URL"); ok {
		cfg.TracingZipkinURL = v
	}
	if v, ok := lookup("LIVETONE_TRACING_SAMPLE_RATIO"); ok && v != "" {
		if cfg.TracingSampleRatio, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("LIVETONE_TRACING_SAMPLE_RATIO: %w", err)
		}
	}
	if v, ok := lookup("LIVETONE_MAX_EXECUTION_TIME"); ok && v != "" {
		if cfg.MaxExecutionTime, err = parseDuration(v); err != nil {
			return nil, fmt.Errorf("LIVETONE_MAX_EXECUTION_TIME: %w", err)
		}
	}
	if v, ok := lookup("LIVETONE_MAX_CALL_STACK"); ok && v != "" {
		if cfg.MaxCallStackSize, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("LIVETONE_MAX_CALL_STACK: %w", err)
		}
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"LIVETONE_EXPOSE_TRANSPORT", &cfg.ExposeTransport},
		{"LIVETONE_HARDEN_GLOBALS", &cfg.HardenGlobals},
		{"LIVETONE_CANCEL_TRANSPORT_ON_STOP", &cfg.CancelTransportOnStop},
		{"LIVETONE_TRACING_ENABLED", &cfg.TracingEnabled},
	}
	for _, f := range flags {
		v, ok := lookup(f.name)
		if !ok || v == "" {
			continue
		}
		if *f.dst, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// parseDuration accepts Go durations and a bare "0".
func parseDuration(v string) (time.Duration, error) {
	if v == "0" {
		return 0, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) GetDenyListPath() string            { return c.DenyListPath }
func (c *Config) GetMaxExecutionTime() time.Duration { return c.MaxExecutionTime }
func (c *Config) GetMaxCallStackSize() int           { return c.MaxCallStackSize }
func (c *Config) GetExposeTransport() bool           { return c.ExposeTransport }
func (c *Config) GetHardenGlobals() bool             { return c.HardenGlobals }
func (c *Config) GetCancelTransportOnStop() bool     { return c.CancelTransportOnStop }
func (c *Config) GetFeedURL() string                 { return c.FeedURL }
func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetAllowedOrigins() []string        { return c.AllowedOrigins }

func (c *Config) GetTracingEnabled() bool        { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string  { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string    { return c.TracingZipkinURL }
func (c *Config) GetTracingSampleRatio() float64 { return c.TracingSampleRatio }
