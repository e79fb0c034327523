// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dotandev/tranche/internal/config"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/shutdown"
	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/spf13/cobra"
)

// Global flag variables
var (
	ConfigFlag   string
	NetworkFlag  string
	RPCURLFlag   string
	LogLevelFlag string
	JSONFlag     bool
	YesFlag      bool
)

// cfg is resolved once per invocation by the root pre-run.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tranche",
	Short: "Senior/junior tranche and lending pool client for Soroban",
	Long: `Tranche drives a senior/junior tranche contract and its lending pool on
the Stellar network. Every state-changing command is simulated, resource
assembled, signed by your wallet and submitted in one step.

The wallet is configured through the environment:
  TRANCHE_WALLET_SECRET       S... seed or hex private key
  TRANCHE_WALLET_TYPE         software (default) or none

Examples:
  tranche connect                          Show the wallet address and XLM balance
  tranche subscribe senior 100             Subscribe 100 units to the senior tranche
  tranche pool supply 50                   Supply 50 units of the token to the pool
  tranche query totals                     Show deposits per tranche
  tranche daemon --addr 127.0.0.1:8787     Serve the JSON-RPC API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func setup(cmd *cobra.Command) error {
	loaded, err := config.LoadFrom(ConfigFlag)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("network") {
		loaded.Network = rpc.Network(NetworkFlag)
	}
	if RPCURLFlag != "" {
		loaded.RPCURL = RPCURLFlag
	}
	if LogLevelFlag != "" {
		loaded.LogLevel = LogLevelFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.Debug {
		logger.SetDebug(true)
	}
	if cfg.LogFile != "" {
		closer := logger.SetFile(cfg.LogFile, true)
		registerShutdownHook("log-file", func(context.Context) error {
			return closer.Close()
		})
	}

	if cfg.Telemetry.Enabled {
		cleanup, err := telemetry.Init(cmd.Context(), telemetry.Config{
			Enabled:        true,
			ExporterURL:    cfg.Telemetry.Endpoint,
			ServiceVersion: Version,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		registerShutdownHook("telemetry", func(context.Context) error {
			cleanup()
			return nil
		})
	}

	logger.Logger.Debug("Configuration loaded", "config", cfg.String(), "source", cfg.Source)
	return nil
}

// Execute runs the root command, running shutdown hooks on exit or on
// SIGINT/SIGTERM.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return executeWithSignals(ctx, cancel, sigCh, shutdown.NewCoordinator(), func(ctx context.Context) error {
		return rootCmd.ExecuteContext(ctx)
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ConfigFlag, "config", "", "Config file (default: first of .tranche.toml, ~/.tranche.toml, /etc/tranche/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&NetworkFlag, "network", "n", string(rpc.Testnet), "Stellar network (testnet, mainnet, futurenet, standalone)")
	rootCmd.PersistentFlags().StringVar(&RPCURLFlag, "rpc-url", "", "Soroban RPC URL, overrides the network preset")
	rootCmd.PersistentFlags().StringVar(&LogLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&JSONFlag, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&YesFlag, "yes", "y", false, "Approve wallet access and signing without prompting")

	_ = rootCmd.RegisterFlagCompletionFunc("network", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"testnet", "mainnet", "futurenet", "standalone"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "tranche", Title: "Tranche Commands:"},
		&cobra.Group{ID: "pool", Title: "Lending Pool Commands:"},
		&cobra.Group{ID: "utility", Title: "Utility Commands:"},
	)
}
