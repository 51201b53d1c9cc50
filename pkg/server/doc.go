// Package server provides the HTTP surface of the harness.
//
// Endpoints:
//
//	POST /v1/conversation  conversation operations (start, continue, get, list, close)
//	POST /v1/compare       side-by-side comparison of 1-4 configurations
//	GET  /v1/providers     provider catalogs with current pricing
//	GET  /healthz          liveness probe
//	GET  /metrics          Prometheus metrics (when enabled)
//
// Operation outcomes always return HTTP 200 with an isError field in
// the body; non-200 statuses are reserved for transport-level problems
// such as malformed JSON.
package server
