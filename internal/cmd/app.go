// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dotandev/tranche/internal/config"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/pipeline"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/dotandev/tranche/internal/wallet"
	"github.com/spf13/cobra"
)

// promptApprover asks on out and reads y/N from in. An empty envelope means
// an access request rather than a signature.
func promptApprover(in io.Reader, out io.Writer, assumeYes bool) wallet.Approver {
	reader := bufio.NewReader(in)
	return func(_ context.Context, envelopeXDR string) error {
		if assumeYes {
			return nil
		}
		if envelopeXDR == "" {
			fmt.Fprint(out, "Share your wallet address with tranche? [y/N] ")
		} else {
			fmt.Fprint(out, "Sign and submit this transaction? [y/N] ")
		}
		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return nil
		default:
			return wallet.ErrDeclined
		}
	}
}

func serviceOptions(c *config.Config, hooks pipeline.Hooks) []tranche.Option {
	return []tranche.Option{
		tranche.WithContracts(c.TrancheContracts()),
		tranche.WithInvestPolicy(c.Policy()),
		tranche.WithFeeCeiling(c.FeeCeiling),
		tranche.WithPipelineOptions(
			pipeline.WithHooks(hooks),
			pipeline.WithBuilderOptions(pipeline.WithTTL(c.TxTimeout)),
		),
	}
}

// newService wires the rpc client, wallet and facade from the resolved
// config.
func newService(c *config.Config, approver wallet.Approver, hooks pipeline.Hooks, clientOpts ...rpc.ClientOption) (*tranche.Service, *rpc.Client, error) {
	client, err := rpc.NewClient(c.ClientOptions(clientOpts...)...)
	if err != nil {
		return nil, nil, err
	}
	w, err := wallet.NewFromEnv(approver)
	if err != nil {
		return nil, nil, err
	}

	logger.Logger.Debug("Service ready",
		"network", client.GetNetworkName(),
		"rpc", client.SorobanURL,
		"policy", c.Policy(),
	)
	svc := tranche.NewService(client, w, client.GetNetworkPassphrase(), serviceOptions(c, hooks)...)
	return svc, client, nil
}

// withSession builds the service, connects the wallet and runs fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, svc *tranche.Service) error) error {
	approver := promptApprover(cmd.InOrStdin(), cmd.ErrOrStderr(), YesFlag)
	svc, _, err := newService(cfg, approver, pipeline.Hooks{})
	if err != nil {
		return err
	}
	registerSessionCloseHook(svc)

	ctx := cmd.Context()
	if err := svc.Connect(ctx); err != nil {
		return err
	}
	return fn(ctx, svc)
}
