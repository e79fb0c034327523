// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"os"
	"strings"
)

// NewFromEnv builds the wallet described by the environment:
//
//	TRANCHE_WALLET_TYPE          software (default) or none
//	TRANCHE_WALLET_SECRET        S... seed or hex Ed25519 key
//	TRANCHE_WALLET_AUTO_CONNECT  treat access as already granted
//
// A software wallet without a secret is reported as absent rather than as
// an error, matching a browser with no wallet extension installed.
func NewFromEnv(approver Approver) (Wallet, error) {
	walletType := strings.ToLower(strings.TrimSpace(os.Getenv("TRANCHE_WALLET_TYPE")))
	if walletType == "" {
		walletType = "software"
	}

	switch walletType {
	case "none":
		return Absent{}, nil

	case "software":
		secret := os.Getenv("TRANCHE_WALLET_SECRET")
		if secret == "" {
			return Absent{}, nil
		}
		return NewSoftwareWallet(secret,
			WithApprover(approver),
			WithPreauthorized(envBool("TRANCHE_WALLET_AUTO_CONNECT")),
		)

	default:
		return nil, &WalletError{Op: "factory", Msg: "unsupported TRANCHE_WALLET_TYPE: " + walletType}
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
