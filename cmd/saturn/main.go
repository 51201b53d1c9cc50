// Saturn is a conversational testing harness for LLM prompts.
//
// It runs multi-turn dialogues against multiple providers, compares
// prompt variations side by side, and tracks token usage and cost per
// conversation:
//   - Multi-turn conversations with durable history (SQLite)
//   - Side-by-side comparison of up to 4 provider/model configurations
//   - Per-model cost accounting with hot-reloadable pricing overrides
//   - Provider catalogs for OpenAI and Anthropic
//
// Usage:
//
//	# Start the server with default configuration
//	saturn run
//
//	# Start with a custom configuration file
//	saturn run --config /path/to/config.yaml
//
//	# List configured providers and their model catalogs
//	saturn providers
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
