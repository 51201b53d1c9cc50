// Package registry builds and owns the configured provider adapters.
//
// A Registry maps provider names to live adapters, layering optional
// pricing overrides on top of each adapter's built-in model catalog.
// Overrides come from a YAML file and can be hot-reloaded through an
// fsnotify watcher, so rate changes take effect without a restart.
//
// EnvCredentials answers credential-presence checks by looking up the
// provider's configured environment variable. The check never errors;
// absence simply reports false.
package registry
