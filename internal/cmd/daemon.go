// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"github.com/dotandev/tranche/internal/daemon"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/metrics"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	daemonAddr      string
	daemonAuthToken string
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "utility",
	Short:   "Serve the tranche JSON-RPC API",
	Long: `Start a JSON-RPC 2.0 server exposing every tranche operation to local tools.

Endpoints:
  POST /rpc       JSON-RPC 2.0, service "Tranche" (e.g. Tranche.Subscribe)
  GET  /session   current wallet session
  GET  /events    session changes as server-sent events
  GET  /metrics   Prometheus metrics
  GET  /healthz   liveness

The daemon signs without prompting; protect it with --auth-token when it
listens beyond loopback.

Example:
  tranche daemon --addr 127.0.0.1:8787
  tranche daemon --addr 0.0.0.0:8787 --auth-token secret123`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("addr") {
			cfg.Daemon.Addr = daemonAddr
		}
		if cmd.Flags().Changed("auth-token") {
			cfg.Daemon.Token = daemonAuthToken
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		m := metrics.New()
		svc, _, err := newService(cfg, wallet.AutoApprove, m.Hooks(), rpc.WithMethodTelemetry(m))
		if err != nil {
			return err
		}
		stopWatch := svc.Watch(m.ObserveSession)
		defer stopWatch()
		registerSessionCloseHook(svc)

		svc.Resume(ctx)
		if st := svc.State(); st.Connected() {
			logger.Logger.Info("Wallet session resumed", "address", st.Address)
		}

		server := daemon.NewServer(svc, daemon.Config{
			Addr:      cfg.Daemon.Addr,
			AuthToken: cfg.Daemon.Token,
		}, daemon.WithMetricsHandler(m.Handler()))

		return server.Start(ctx, nil)
	},
}

func init() {
	daemonCmd.Flags().StringVar(&daemonAddr, "addr", "127.0.0.1:8787", "Listen address")
	daemonCmd.Flags().StringVar(&daemonAuthToken, "auth-token", "", "Bearer token required on /rpc, /session and /events")

	rootCmd.AddCommand(daemonCmd)
}
