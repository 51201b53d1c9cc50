package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"promptlab/saturn/pkg/providers"
	"promptlab/saturn/pkg/providers/anthropic"
	"promptlab/saturn/pkg/providers/openai"
	"promptlab/saturn/pkg/telemetry/logging"
)

// ProviderSpec describes one provider to construct. Type selects the
// adapter; when empty it defaults to the spec name.
type ProviderSpec struct {
	Name       string
	Type       string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Registry maps provider names to live adapters. It is safe for
// concurrent use; the provider set is fixed after construction, only
// pricing overrides change at runtime.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]providers.Provider
	overrides *PricingOverrides
	logger    *logging.Logger
}

// New builds a registry from the given specs. Construction is
// all-or-nothing: the first failing spec closes everything already
// built and returns the error.
func New(specs []ProviderSpec, overrides *PricingOverrides, logger *logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Registry{
		providers: make(map[string]providers.Provider, len(specs)),
		overrides: overrides,
		logger:    logger,
	}

	for _, spec := range specs {
		provider, err := buildProvider(spec)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("building provider %q: %w", spec.Name, err)
		}
		r.providers[spec.Name] = provider
		logger.Info("provider registered",
			"provider", spec.Name,
			"type", providerType(spec),
			"models", len(provider.DefaultModels()),
		)
	}

	return r, nil
}

// buildProvider constructs the adapter named by the spec type.
func buildProvider(spec ProviderSpec) (providers.Provider, error) {
	cfg := providers.Config{
		Name:       spec.Name,
		BaseURL:    spec.BaseURL,
		APIKey:     spec.APIKey,
		Timeout:    spec.Timeout,
		MaxRetries: spec.MaxRetries,
	}

	switch providerType(spec) {
	case "openai":
		return openai.NewProvider(cfg)
	case "anthropic":
		return anthropic.NewProvider(cfg)
	default:
		return nil, &providers.ConfigError{
			Provider: spec.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, anthropic)", providerType(spec)),
		}
	}
}

func providerType(spec ProviderSpec) string {
	if spec.Type != "" {
		return spec.Type
	}
	return spec.Name
}

// Get returns the adapter for the given provider name. When pricing
// overrides are configured the adapter's catalog is returned with
// overrides applied, so downstream cost calculation sees current rates.
func (r *Registry) Get(name string) (providers.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[name]
	if !ok {
		return nil, false
	}
	if r.overrides == nil {
		return provider, true
	}
	return &pricedProvider{Provider: provider, name: name, overrides: r.overrides}, true
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog returns the model catalog for one provider, with pricing
// overrides applied. The second return is false for unknown providers.
func (r *Registry) Catalog(name string) ([]providers.ModelInfo, bool) {
	provider, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return provider.DefaultModels(), true
}

// Catalogs returns every provider's catalog keyed by provider name.
func (r *Registry) Catalogs() map[string][]providers.ModelInfo {
	out := make(map[string][]providers.ModelInfo)
	for _, name := range r.Names() {
		catalog, _ := r.Catalog(name)
		out[name] = catalog
	}
	return out
}

// Close shuts down every adapter. Errors are logged, not returned
// aggregated; the last error wins.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last error
	for name, provider := range r.providers {
		if err := provider.Close(); err != nil {
			r.logger.Error("closing provider", "provider", name, "error", err)
			last = err
		}
	}
	r.providers = make(map[string]providers.Provider)
	return last
}

// pricedProvider wraps an adapter so DefaultModels reflects the
// current pricing overrides. All other methods delegate.
type pricedProvider struct {
	providers.Provider
	name      string
	overrides *PricingOverrides
}

func (p *pricedProvider) DefaultModels() []providers.ModelInfo {
	return p.overrides.Apply(p.name, p.Provider.DefaultModels())
}
