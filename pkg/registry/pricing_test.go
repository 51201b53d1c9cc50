package registry

import (
	"os"
	"path/filepath"
	"testing"

	"promptlab/saturn/pkg/providers"
)

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPricingOverrides(t *testing.T) {
	path := writeOverrides(t, `
providers:
  openai:
    gpt-4o-mini:
      input: 0.10
      output: 0.40
`)

	overrides, err := LoadPricingOverrides(path, nil)
	if err != nil {
		t.Fatalf("LoadPricingOverrides: %v", err)
	}

	catalog := []providers.ModelInfo{
		{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60},
		{Name: "gpt-4o", InputCost: 2.50, OutputCost: 10.00},
	}

	got := overrides.Apply("openai", catalog)

	if got[0].InputCost != 0.10 || got[0].OutputCost != 0.40 {
		t.Errorf("overridden rates = %v/%v", got[0].InputCost, got[0].OutputCost)
	}
	if got[1].InputCost != 2.50 || got[1].OutputCost != 10.00 {
		t.Errorf("unmatched model changed: %v/%v", got[1].InputCost, got[1].OutputCost)
	}

	// The input catalog must stay untouched.
	if catalog[0].InputCost != 0.15 {
		t.Errorf("Apply mutated the input catalog: %v", catalog[0].InputCost)
	}
}

func TestLoadPricingOverridesMissingFile(t *testing.T) {
	overrides, err := LoadPricingOverrides(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}

	catalog := []providers.ModelInfo{{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60}}
	got := overrides.Apply("openai", catalog)

	if got[0].InputCost != 0.15 {
		t.Errorf("empty override set changed rates: %v", got[0].InputCost)
	}
}

func TestLoadPricingOverridesMalformed(t *testing.T) {
	path := writeOverrides(t, "providers: [not a map")

	if _, err := LoadPricingOverrides(path, nil); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestApplyOtherProviderUnaffected(t *testing.T) {
	path := writeOverrides(t, `
providers:
  openai:
    gpt-4o-mini:
      input: 0.10
      output: 0.40
`)

	overrides, err := LoadPricingOverrides(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	catalog := []providers.ModelInfo{{Name: "gpt-4o-mini", InputCost: 0.15, OutputCost: 0.60}}
	got := overrides.Apply("anthropic", catalog)

	if got[0].InputCost != 0.15 {
		t.Errorf("override for another provider applied: %v", got[0].InputCost)
	}
}
