package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"promptlab/saturn/pkg/cli"
	"promptlab/saturn/pkg/config"
	"promptlab/saturn/pkg/registry"
)

var providersFlags struct {
	output string
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers and their model catalogs",
	Long: `List every configured provider with its default model catalog,
including per-million-token pricing. Pricing overrides from the
configured overrides file are applied.

Examples:
  # Human-readable listing
  saturn providers

  # JSON output
  saturn providers --output json`,
	RunE: listProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().StringVarP(&providersFlags.output, "output", "o", "text", "output format (text, json)")
}

func listProviders(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	var overrides *registry.PricingOverrides
	if cfg.Pricing.OverridesPath != "" {
		var err error
		overrides, err = registry.LoadPricingOverrides(cfg.Pricing.OverridesPath, nil)
		if err != nil {
			return fmt.Errorf("failed to load pricing overrides: %w", err)
		}
	}

	// Catalog listing needs no credentials; adapters are built keyless.
	specs := make([]registry.ProviderSpec, 0, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		specs = append(specs, registry.ProviderSpec{
			Name:    name,
			Type:    providerCfg.Type,
			BaseURL: providerCfg.BaseURL,
		})
	}

	reg, err := registry.New(specs, overrides, nil)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}
	defer reg.Close()

	if providersFlags.output == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, reg.Catalogs())
	}

	for _, name := range reg.Names() {
		catalog, _ := reg.Catalog(name)
		fmt.Printf("%s:\n", name)
		for _, model := range catalog {
			fmt.Printf("  %-28s %-10s in $%.2f/M  out $%.2f/M  %s\n",
				model.Name, model.Type, model.InputCost, model.OutputCost, model.Description)
		}
		fmt.Println()
	}

	return nil
}
