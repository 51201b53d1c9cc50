// Package telemetry provides observability for Saturn.
//
// # Components
//
//   - logging: structured logging with secret redaction
//   - metrics: Prometheus metrics collection
//
// Both components are injected where needed; nothing here touches
// global state, so tests can run with isolated registries and no-op
// loggers.
package telemetry
