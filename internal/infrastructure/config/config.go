package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Exporter kinds accepted by TracingConfig.Exporter.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Tracing   TracingConfig
	Logging   LogConfig
	Metrics   MetricsConfig
	Collector CollectorConfig
	Shutdown  ShutdownConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host       string `envconfig:"HOST" default:"127.0.0.1"`
	Port       string `envconfig:"PORT" default:"9898"`
	H2CEnabled bool   `envconfig:"H2C_ENABLED" default:"true"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// TracingConfig holds span export configuration.
type TracingConfig struct {
	Endpoint           string        `envconfig:"OTEL_COLLECTOR_ENDPOINT" default:"http://localhost:4317"`
	ExportTimeout      time.Duration `envconfig:"OTEL_EXPORT_TIMEOUT" default:"5s"`
	ServiceName        string        `envconfig:"OTEL_SERVICE_NAME" default:"h2-poll-traces"`
	Exporter           string        `envconfig:"OTEL_EXPORTER" default:"otlp"`
	BatchTimeout       time.Duration `envconfig:"OTEL_BATCH_TIMEOUT" default:"5s"`
	MaxQueueSize       int           `envconfig:"OTEL_MAX_QUEUE_SIZE" default:"2048"`
	MaxExportBatchSize int           `envconfig:"OTEL_MAX_EXPORT_BATCH_SIZE" default:"512"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the Prometheus listener configuration.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Addr    string `envconfig:"METRICS_ADDR" default:"127.0.0.1:9899"`
}

// CollectorConfig holds the local OTLP sink configuration. The sink has its
// own metrics address so it can run next to the server.
type CollectorConfig struct {
	Addr        string `envconfig:"COLLECTOR_ADDR" default:"127.0.0.1:4317"`
	MetricsAddr string `envconfig:"COLLECTOR_METRICS_ADDR" default:"127.0.0.1:9900"`
}

// ShutdownConfig bounds the drain performed on SIGINT/SIGTERM.
type ShutdownConfig struct {
	Timeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "127.0.0.1",
			Port:       "9898",
			H2CEnabled: true,
		},
		Tracing: TracingConfig{
			Endpoint:           "http://localhost:4317",
			ExportTimeout:      5 * time.Second,
			ServiceName:        "h2-poll-traces",
			Exporter:           ExporterOTLP,
			BatchTimeout:       5 * time.Second,
			MaxQueueSize:       2048,
			MaxExportBatchSize: 512,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9899",
		},
		Collector: CollectorConfig{
			Addr:        "127.0.0.1:4317",
			MetricsAddr: "127.0.0.1:9900",
		},
		Shutdown: ShutdownConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Validate checks every section that has constraints.
func (c *Config) Validate() error {
	return c.Tracing.Validate()
}

// Validate checks settings the tracing pipeline cannot work with.
func (t TracingConfig) Validate() error {
	switch {
	case t.ServiceName == "":
		return fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	case t.Exporter != ExporterOTLP && t.Exporter != ExporterStdout:
		return fmt.Errorf("%w: unknown exporter %q", ErrInvalidConfig, t.Exporter)
	case t.ExportTimeout <= 0:
		return fmt.Errorf("%w: export timeout must be positive, got %s", ErrInvalidConfig, t.ExportTimeout)
	case t.BatchTimeout <= 0:
		return fmt.Errorf("%w: batch timeout must be positive, got %s", ErrInvalidConfig, t.BatchTimeout)
	case t.MaxQueueSize <= 0:
		return fmt.Errorf("%w: max queue size must be positive, got %d", ErrInvalidConfig, t.MaxQueueSize)
	case t.MaxExportBatchSize <= 0 || t.MaxExportBatchSize > t.MaxQueueSize:
		return fmt.Errorf("%w: max export batch size must be in (0, %d], got %d",
			ErrInvalidConfig, t.MaxQueueSize, t.MaxExportBatchSize)
	}

	if t.Exporter == ExporterOTLP {
		return validateEndpoint(t.Endpoint)
	}
	return nil
}

// validateEndpoint requires an absolute http(s) URL with a host.
func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: collector endpoint is required for otlp exporter", ErrInvalidConfig)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: collector endpoint: %v", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: collector endpoint must look like http://host:port, got %q", ErrInvalidConfig, endpoint)
	}
	return nil
}
