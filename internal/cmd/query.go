// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/spf13/cobra"
)

var queryToken string

var queryCmd = &cobra.Command{
	Use:     "query",
	GroupID: "tranche",
	Short:   "Read contract state without signing",
}

// runQuery connects, runs fn and prints its result as JSON or as the
// fields text returns.
func runQuery[T any](cmd *cobra.Command, fn func(svc *tranche.Service, ctx context.Context) (T, error), text func(T) []field) error {
	return withSession(cmd, func(ctx context.Context, svc *tranche.Service) error {
		v, err := fn(svc, ctx)
		if err != nil {
			return err
		}
		if JSONFlag {
			return printJSON(cmd.OutOrStdout(), v)
		}
		printFields(cmd.OutOrStdout(), text(v)...)
		return nil
	})
}

func totalsFields(t tranche.Totals) []field {
	return []field{{"senior", t.Senior}, {"junior", t.Junior}}
}

func reserveFields(prefix string, rs []tranche.Reserve) []field {
	out := make([]field, 0, len(rs))
	for _, r := range rs {
		out = append(out, field{fmt.Sprintf("%s[%d]", prefix, r.Index), r.Amount})
	}
	return out
}

var queryShareCmd = &cobra.Command{
	Use:               "share <senior|junior>",
	Short:             "Show your share of a tranche",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTranche,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := contract.ParseTrancheKind(args[0])
		if err != nil {
			return err
		}
		return runQuery(cmd, func(svc *tranche.Service, ctx context.Context) (string, error) {
			return svc.GetUserShare(ctx, kind)
		}, func(share string) []field {
			return []field{{kind.String(), share}}
		})
	},
}

var queryTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show the amount deposited in each tranche",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, (*tranche.Service).GetTotals, totalsFields)
	},
}

var queryMinimumsCmd = &cobra.Command{
	Use:   "minimums",
	Short: "Show the minimum subscription per tranche",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, (*tranche.Service).GetMinimums, totalsFields)
	},
}

var queryPausedCmd = &cobra.Command{
	Use:   "paused",
	Short: "Show whether the tranche contract is paused",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, (*tranche.Service).IsPaused, func(p bool) []field {
			return []field{{"paused", strconv.FormatBool(p)}}
		})
	},
}

var queryTokenBalanceCmd = &cobra.Command{
	Use:   "token-balance",
	Short: "Show your balance of a token contract",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(svc *tranche.Service, ctx context.Context) (string, error) {
			return svc.GetTokenBalance(ctx, queryToken)
		}, func(bal string) []field {
			return []field{{"balance", bal}}
		})
	},
}

var queryPositionCmd = &cobra.Command{
	Use:   "position",
	Short: "Show your lending pool positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, (*tranche.Service).GetPoolPosition, func(p tranche.Position) []field {
			fields := reserveFields("supply", p.Supply)
			fields = append(fields, reserveFields("collateral", p.Collateral)...)
			fields = append(fields, reserveFields("liability", p.Liabilities)...)
			if len(fields) == 0 {
				return []field{{"position", "none"}}
			}
			return fields
		})
	},
}

func init() {
	queryTokenBalanceCmd.Flags().StringVar(&queryToken, "token", "", "Token contract (default: configured token)")
	queryCmd.AddCommand(
		queryShareCmd,
		queryTotalsCmd,
		queryMinimumsCmd,
		queryPausedCmd,
		queryTokenBalanceCmd,
		queryPositionCmd,
	)
	rootCmd.AddCommand(queryCmd)
}
