package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all validation errors found in a
// configuration.
type ValidationError struct {
	// Errors contains all validation errors found.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All errors are collected
// and returned together; nil means the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(server *ServerConfig) []FieldError {
	var errs []FieldError

	if server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "field is required"})
	} else if !strings.Contains(server.ListenAddress, ":") {
		errs = append(errs, FieldError{"server.listen_address", "must be in host:port format"})
	}
	if server.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	if len(providers) == 0 {
		errs = append(errs, FieldError{"providers", "at least one provider must be configured"})
		return errs
	}

	for name, provider := range providers {
		field := func(f string) string { return fmt.Sprintf("providers.%s.%s", name, f) }

		switch provider.Type {
		case "openai", "anthropic":
		default:
			errs = append(errs, FieldError{field("type"), fmt.Sprintf("unsupported type %q (supported: openai, anthropic)", provider.Type)})
		}

		if provider.BaseURL != "" {
			if u, err := url.Parse(provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{field("base_url"), "must be a valid absolute URL"})
			}
		}
		if provider.Timeout < 0 {
			errs = append(errs, FieldError{field("timeout"), "must not be negative"})
		}
		if provider.MaxRetries < 0 {
			errs = append(errs, FieldError{field("max_retries"), "must not be negative"})
		}
	}

	return errs
}

func validateStorage(storage *StorageConfig) []FieldError {
	var errs []FieldError

	switch storage.Backend {
	case "sqlite":
		if storage.Path == "" {
			errs = append(errs, FieldError{"storage.path", "field is required for the sqlite backend"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{"storage.backend", fmt.Sprintf("unsupported backend %q (supported: sqlite, memory)", storage.Backend)})
	}

	return errs
}

func validateTelemetry(telemetry *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("unsupported level %q", telemetry.Logging.Level)})
	}

	switch telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("unsupported format %q", telemetry.Logging.Format)})
	}

	if telemetry.Metrics.Enabled && !strings.HasPrefix(telemetry.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	return errs
}
