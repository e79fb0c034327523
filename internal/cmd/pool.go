// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/dotandev/tranche/internal/tranche"
	"github.com/spf13/cobra"
)

var poolAsset string

var poolCmd = &cobra.Command{
	Use:     "pool",
	GroupID: "pool",
	Short:   "Supply, withdraw, borrow or repay against the lending pool",
}

func poolRequestCmd(use, short string, op func(*tranche.Service, context.Context, string, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
				hash, err := op(svc, ctx, poolAsset, args[0])
				if err != nil {
					return err
				}
				return printTx(cmd.OutOrStdout(), "pool "+use, hash)
			})
		},
	}
}

func init() {
	poolCmd.PersistentFlags().StringVar(&poolAsset, "asset", "", "Asset contract (default: configured token)")
	poolCmd.AddCommand(
		poolRequestCmd("supply", "Supply collateral to the pool", (*tranche.Service).Supply),
		poolRequestCmd("withdraw", "Withdraw collateral from the pool", (*tranche.Service).Withdraw),
		poolRequestCmd("borrow", "Borrow from the pool", (*tranche.Service).Borrow),
		poolRequestCmd("repay", "Repay a pool liability", (*tranche.Service).Repay),
	)
	rootCmd.AddCommand(poolCmd)
}
