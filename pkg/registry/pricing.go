package registry

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"promptlab/saturn/pkg/providers"
	"promptlab/saturn/pkg/telemetry/logging"
)

// modelRates is one override entry: per-million-token USD rates.
type modelRates struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// overridesFile is the on-disk shape of the pricing overrides document.
type overridesFile struct {
	Providers map[string]map[string]modelRates `yaml:"providers"`
}

// PricingOverrides holds per-provider, per-model rate overrides loaded
// from a YAML file. Reads are lock-protected so a concurrent reload is
// safe against in-flight catalog lookups.
type PricingOverrides struct {
	mu     sync.RWMutex
	path   string
	rates  map[string]map[string]modelRates
	logger *logging.Logger

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 100 * time.Millisecond

// LoadPricingOverrides reads the overrides file at path. A missing
// file is not an error: it yields an empty override set and catalog
// rates apply unchanged.
func LoadPricingOverrides(path string, logger *logging.Logger) (*PricingOverrides, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	p := &PricingOverrides{
		path:   path,
		rates:  make(map[string]map[string]modelRates),
		logger: logger,
	}

	if err := p.reload(); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("pricing overrides file absent, using catalog rates", "path", path)
			return p, nil
		}
		return nil, err
	}

	return p, nil
}

// reload re-reads and re-parses the overrides file.
func (p *PricingOverrides) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}

	var doc overridesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing pricing overrides %s: %w", p.path, err)
	}

	rates := doc.Providers
	if rates == nil {
		rates = make(map[string]map[string]modelRates)
	}

	p.mu.Lock()
	p.rates = rates
	p.mu.Unlock()

	count := 0
	for _, models := range rates {
		count += len(models)
	}
	p.logger.Info("pricing overrides loaded", "path", p.path, "models", count)
	return nil
}

// Apply returns the catalog with any matching overrides substituted.
// Models without an override pass through unchanged; overrides for
// models absent from the catalog are ignored.
func (p *PricingOverrides) Apply(provider string, catalog []providers.ModelInfo) []providers.ModelInfo {
	p.mu.RLock()
	models := p.rates[provider]
	p.mu.RUnlock()

	if len(models) == 0 {
		return catalog
	}

	out := make([]providers.ModelInfo, len(catalog))
	copy(out, catalog)
	for i := range out {
		if rates, ok := models[out[i].Name]; ok {
			out[i].InputCost = rates.Input
			out[i].OutputCost = rates.Output
		}
	}
	return out
}

// Watch blocks watching the overrides file for changes, reloading on
// each write. It returns when the context is cancelled. Parse errors
// during reload are logged and the previous override set is kept.
func (p *PricingOverrides) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.path); err != nil {
		return fmt.Errorf("watching %s: %w", p.path, err)
	}

	p.logger.Info("watching pricing overrides", "path", p.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			p.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			p.logger.Error("pricing watcher error", "error", err)
		}
	}
}

// scheduleReload debounces reloads so a burst of write events turns
// into a single re-parse.
func (p *PricingOverrides) scheduleReload() {
	p.debounceMu.Lock()
	defer p.debounceMu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(watchDebounce, func() {
		if err := p.reload(); err != nil {
			p.logger.Error("pricing overrides reload failed", "path", p.path, "error", err)
		}
	})
}
