package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"promptlab/saturn/pkg/cli"
	"promptlab/saturn/pkg/comparison"
	"promptlab/saturn/pkg/config"
	"promptlab/saturn/pkg/conversation"
	"promptlab/saturn/pkg/registry"
	"promptlab/saturn/pkg/server"
	"promptlab/saturn/pkg/telemetry/logging"
	"promptlab/saturn/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Saturn server",
	Long: `Start the Saturn server with the specified configuration.

The server exposes conversation, comparison, and provider-catalog
endpoints over HTTP, persisting conversations to the configured store.

Examples:
  # Start with default config
  saturn run

  # Start with custom config
  saturn run --config /etc/saturn/config.yaml

  # Override listen address
  saturn run --listen 0.0.0.0:8080

  # Validate config without starting the server
  saturn run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Saturn v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Conversation store
	var store conversation.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		store, err = conversation.NewSQLiteStoreWithConfig(conversation.SQLiteStoreConfig{
			Path:        cfg.Storage.Path,
			BusyTimeout: cfg.Storage.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open conversation store: %w", err)
		}
	case "memory":
		store = conversation.NewMemoryStore()
	default:
		return cli.NewConfigError("storage.backend", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend))
	}
	defer store.Close()
	fmt.Printf("✓ Conversation store ready (%s)\n", cfg.Storage.Backend)

	// Pricing overrides
	var overrides *registry.PricingOverrides
	if cfg.Pricing.OverridesPath != "" {
		overrides, err = registry.LoadPricingOverrides(cfg.Pricing.OverridesPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load pricing overrides: %w", err)
		}
		if cfg.Pricing.Watch {
			go func() {
				if err := overrides.Watch(ctx); err != nil {
					logger.Error("pricing overrides watcher stopped", "error", err)
				}
			}()
		}
	}

	// Credentials and provider registry
	envVars := make(map[string]string, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		if providerCfg.APIKeyEnv != "" {
			envVars[name] = providerCfg.APIKeyEnv
		}
	}
	creds := registry.NewEnvCredentials(envVars)

	anyCredential := false
	for name := range cfg.Providers {
		if creds.HasCredential(name) {
			anyCredential = true
			break
		}
	}
	if !anyCredential {
		logger.Warn("no provider credentials found in the environment; generation requests will fail until one is set")
	}

	specs := make([]registry.ProviderSpec, 0, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		specs = append(specs, registry.ProviderSpec{
			Name:       name,
			Type:       providerCfg.Type,
			BaseURL:    providerCfg.BaseURL,
			APIKey:     creds.Key(name),
			Timeout:    providerCfg.Timeout,
			MaxRetries: providerCfg.MaxRetries,
		})
	}

	reg, err := registry.New(specs, overrides, logger)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}
	defer reg.Close()
	fmt.Printf("✓ Providers initialized (%d providers)\n", len(reg.Names()))

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(prometheus.NewRegistry())
	}

	// Conversation manager and comparison runner
	manager := conversation.NewManager(conversation.ManagerConfig{
		Store:       store,
		Providers:   reg,
		Credentials: creds,
		Logger:      logger,
		Metrics:     collector,
		CallTimeout: cfg.Conversation.CallTimeout,
	})

	runner := comparison.NewRunner(comparison.RunnerConfig{
		Providers:   reg,
		Credentials: creds,
		Logger:      logger,
		Metrics:     collector,
		CallTimeout: cfg.Conversation.CallTimeout,
	})

	// Scheduled store maintenance
	maintenance := conversation.NewMaintenance(store, cfg.Storage.CheckpointSchedule, logger, collector)
	if err := maintenance.Start(ctx); err != nil {
		logger.Warn("failed to start maintenance scheduler", "error", err)
	} else {
		defer maintenance.Stop()
	}

	// HTTP server
	opts := server.Options{
		Config:      &cfg.Server,
		Logger:      logger,
		Executor:    manager,
		Comparer:    runner,
		Catalogs:    reg,
		MetricsPath: cfg.Telemetry.Metrics.Path,
	}
	if collector != nil {
		opts.MetricsHandler = collector.Handler()
	}
	srv := server.NewServer(opts)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}
