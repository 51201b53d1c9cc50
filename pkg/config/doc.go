// Package config provides configuration management for the harness.
//
// Configuration loads from a YAML file with optional environment
// variable overrides. Values apply in order: defaults, file, then
// environment; the result is validated before use.
//
// Environment variables follow the convention SATURN_SECTION_FIELD:
//
//   - SATURN_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - SATURN_PROVIDERS_OPENAI_BASE_URL overrides providers.openai.base_url
//   - SATURN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Provider API keys are never stored in configuration files: each
// provider entry names the environment variable carrying its key
// (api_key_env, defaulting to <PROVIDER>_API_KEY) and the key is read
// at startup.
//
// A minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	providers:
//	  openai:
//	    type: openai
//	  anthropic:
//	    type: anthropic
//
//	storage:
//	  backend: sqlite
//	  path: data/conversations.db
package config
