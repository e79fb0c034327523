// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/dotandev/tranche/internal/tranche"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:     "connect",
	GroupID: "utility",
	Short:   "Connect the wallet and show the session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ context.Context, svc *tranche.Service) error {
			st := svc.State()
			if JSONFlag {
				return printJSON(cmd.OutOrStdout(), st)
			}
			successColor.Fprintln(cmd.OutOrStdout(), "✓ Wallet connected")
			printFields(cmd.OutOrStdout(),
				field{"address", st.Address},
				field{"balance", st.NativeBalance + " XLM"},
				field{"session", svc.Session().ID()},
			)
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:     "balance",
	GroupID: "utility",
	Short:   "Show the wallet's native XLM balance",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
			bal, err := svc.RefreshBalance(ctx)
			if err != nil {
				return err
			}
			if JSONFlag {
				return printJSON(cmd.OutOrStdout(), map[string]string{"address": svc.State().Address, "balance": bal})
			}
			printFields(cmd.OutOrStdout(), field{"balance", bal + " XLM"})
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd, balanceCmd)
}
