package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"promptlab/saturn/pkg/config"
	"promptlab/saturn/pkg/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the server.

All validation errors are collected and reported together. The command
also reports which configured providers have a credential available in
the environment.

Examples:
  saturn validate
  saturn validate --config /etc/saturn/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  storage:        %s (%s)\n", cfg.Storage.Backend, cfg.Storage.Path)

	envVars := make(map[string]string, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		if providerCfg.APIKeyEnv != "" {
			envVars[name] = providerCfg.APIKeyEnv
		}
	}
	creds := registry.NewEnvCredentials(envVars)

	for name := range cfg.Providers {
		if creds.HasCredential(name) {
			fmt.Printf("  provider %-12s credential found (%s)\n", name, creds.EnvVar(name))
		} else {
			fmt.Printf("  provider %-12s no credential (%s not set)\n", name, creds.EnvVar(name))
		}
	}

	return nil
}
