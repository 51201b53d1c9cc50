// Package metrics exposes Prometheus instrumentation for the harness:
// operation counters and durations, provider call latency and token and
// cost accounting, and the active-conversation gauge.
//
// Metrics (prefix saturn_):
//   - saturn_operations_total{mode,outcome}
//   - saturn_operation_duration_seconds{mode}
//   - saturn_provider_requests_total{provider,model}
//   - saturn_provider_latency_seconds{provider,model}
//   - saturn_provider_errors_total{provider,kind}
//   - saturn_tokens_total{provider,model}
//   - saturn_cost_usd_total{provider,model}
//   - saturn_active_conversations
package metrics
