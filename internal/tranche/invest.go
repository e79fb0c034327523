// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package tranche

import (
	"context"
	"strings"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
)

// InvestPolicy decides which contract call backs the create-tokens and
// invest flows.
type InvestPolicy string

const (
	// PolicyPoolSupply supplies the RWA token to the lending pool. The
	// tranche kind is informational only.
	PolicyPoolSupply InvestPolicy = "pool-supply"
	// PolicyTrancheSubscribe subscribes to the tranche contract.
	PolicyTrancheSubscribe InvestPolicy = "tranche-subscribe"
)

// InvestPolicies lists the accepted values.
var InvestPolicies = []InvestPolicy{PolicyPoolSupply, PolicyTrancheSubscribe}

func ParseInvestPolicy(s string) (InvestPolicy, error) {
	switch InvestPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPoolSupply:
		return PolicyPoolSupply, nil
	case PolicyTrancheSubscribe:
		return PolicyTrancheSubscribe, nil
	default:
		return "", errors.WrapValidationError("unknown invest policy " + s)
	}
}

// Policy returns the active invest policy.
func (s *Service) Policy() InvestPolicy { return s.policy }

// CreateTrancheTokens mints tranche exposure for amount under the active
// policy.
func (s *Service) CreateTrancheTokens(ctx context.Context, kind contract.TrancheKind, amt string) (string, error) {
	return s.invest(ctx, "create_tranche_tokens", kind, amt)
}

// InvestInTranche invests amount in a tranche under the active policy.
func (s *Service) InvestInTranche(ctx context.Context, kind contract.TrancheKind, amt string) (string, error) {
	return s.invest(ctx, "invest_in_tranche", kind, amt)
}

func (s *Service) invest(ctx context.Context, flow string, kind contract.TrancheKind, amt string) (string, error) {
	logger.Logger.Debug("Invest flow", "flow", flow, "policy", s.policy, "tranche", kind.String())
	switch s.policy {
	case PolicyTrancheSubscribe:
		return s.Subscribe(ctx, kind, amt)
	case PolicyPoolSupply, "":
		return s.Supply(ctx, s.contracts.rwaToken(), amt)
	default:
		return "", errors.WrapValidationError("unknown invest policy " + string(s.policy))
	}
}
