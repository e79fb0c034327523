// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/spf13/cobra"
)

var trancheKinds = []string{"senior", "junior"}

func completeTranche(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return trancheKinds, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// trancheAmountCmd builds a "<use> <tranche> <amount>" command around op.
func trancheAmountCmd(use, short, label string, op func(*tranche.Service, context.Context, contract.TrancheKind, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:               use + " <senior|junior> <amount>",
		GroupID:           "tranche",
		Short:             short,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTranche,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := contract.ParseTrancheKind(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
				hash, err := op(svc, ctx, kind, args[1])
				if err != nil {
					return err
				}
				return printTx(cmd.OutOrStdout(), label, hash)
			})
		},
	}
}

var (
	subscribeCmd = trancheAmountCmd("subscribe", "Subscribe an amount to a tranche", "subscribe",
		(*tranche.Service).Subscribe)
	redeemCmd = trancheAmountCmd("redeem", "Redeem an amount from a tranche", "redeem",
		(*tranche.Service).Redeem)
	investCmd = trancheAmountCmd("invest", "Invest in a tranche under the configured invest policy", "invest",
		(*tranche.Service).InvestInTranche)
	createTokensCmd = trancheAmountCmd("create-tokens", "Create tranche tokens under the configured invest policy", "create tranche tokens",
		(*tranche.Service).CreateTrancheTokens)
)

var approveCmd = &cobra.Command{
	Use:     "approve <user> <senior|junior> <amount>",
	GroupID: "tranche",
	Short:   "Approve a user's pending subscription (admin)",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := contract.ParseTrancheKind(args[1])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
			hash, err := svc.ApproveSubscription(ctx, args[0], kind, args[2])
			if err != nil {
				return err
			}
			return printTx(cmd.OutOrStdout(), "approve subscription", hash)
		})
	},
}

var (
	initToken string
	initPool  string
)

var initializeCmd = &cobra.Command{
	Use:     "initialize <min-senior> <min-junior>",
	GroupID: "tranche",
	Short:   "Initialize the tranche contract with the connected account as admin",
	Long: `Initialize the tranche contract. The connected account becomes the admin.
The token and pool default to the configured contracts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
			hash, err := svc.Initialize(ctx, initToken, initPool, args[0], args[1])
			if err != nil {
				return err
			}
			return printTx(cmd.OutOrStdout(), "initialize", hash)
		})
	},
}

func init() {
	initializeCmd.Flags().StringVar(&initToken, "token", "", "Token contract (default: configured token)")
	initializeCmd.Flags().StringVar(&initPool, "pool", "", "Pool contract (default: configured pool)")

	rootCmd.AddCommand(subscribeCmd, redeemCmd, investCmd, createTokensCmd, approveCmd, initializeCmd)
}
