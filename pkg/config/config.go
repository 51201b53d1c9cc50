package config

import "time"

// Config is the root configuration structure for the harness. It covers
// the HTTP server, provider adapters, conversation storage, pricing
// overrides, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Providers contains configuration for all LLM provider adapters.
	// Keys are provider names (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Conversation contains settings for the conversation manager.
	Conversation ConversationConfig `yaml:"conversation"`

	// Storage contains configuration for the conversation store.
	Storage StorageConfig `yaml:"storage"`

	// Pricing contains configuration for model pricing overrides.
	Pricing PricingConfig `yaml:"pricing"`

	// Telemetry contains observability configuration: logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Provider calls can be slow, so this must exceed the
	// conversation call timeout.
	// Default: 150s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains configuration for a single provider adapter.
type ProviderConfig struct {
	// Type selects the adapter ("openai" or "anthropic"). When empty
	// the provider name is used.
	Type string `yaml:"type"`

	// BaseURL overrides the provider's default API endpoint. Useful for
	// proxies and test servers.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// Default: <PROVIDER>_API_KEY
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout is the per-request HTTP timeout for this provider.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of automatic retries for transient
	// failures. The harness surfaces provider errors to the caller
	// instead of retrying, so this defaults to 0.
	MaxRetries int `yaml:"max_retries"`
}

// ConversationConfig contains settings for the conversation manager and
// comparison runner.
type ConversationConfig struct {
	// CallTimeout bounds each provider generation call.
	// Default: 2m
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// StorageConfig contains configuration for the conversation store.
type StorageConfig struct {
	// Backend selects the store implementation: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path. Ignored for the memory
	// backend.
	// Default: "data/conversations.db"
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// CheckpointSchedule is a cron expression for periodic WAL
	// checkpoints. Empty disables scheduled checkpoints.
	// Default: "0 * * * *" (hourly)
	CheckpointSchedule string `yaml:"checkpoint_schedule"`
}

// PricingConfig contains configuration for model pricing overrides.
type PricingConfig struct {
	// OverridesPath is the YAML file with per-model rate overrides.
	// Empty disables overrides.
	OverridesPath string `yaml:"overrides_path"`

	// Watch enables hot-reloading of the overrides file.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text", "console").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and tokens in log output.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
