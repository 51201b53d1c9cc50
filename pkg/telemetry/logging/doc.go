// Package logging provides the harness's structured logger: a thin
// wrapper over log/slog with level and format parsing plus automatic
// secret redaction, so provider API keys can never leak into log output.
package logging
