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

package rpc

import (
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/dotandev/tranche/internal/errors"
)

func isValidURL(urlStr string) error {
	if urlStr == "" {
		return errors.WrapValidationError("URL cannot be empty")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return errors.WrapValidationError(fmt.Sprintf("invalid URL format: %v", err))
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.WrapValidationError(fmt.Sprintf("URL scheme must be http or https, got %q", parsed.Scheme))
	}

	if parsed.Host == "" {
		return errors.WrapValidationError("URL must include a host")
	}

	return nil
}

// ValidateURL reports whether urlStr is an absolute http(s) URL.
func ValidateURL(urlStr string) error {
	return isValidURL(urlStr)
}

func ValidateNetworkConfig(config NetworkConfig) error {
	if config.Name == "" {
		return errors.WrapValidationError("network name is required")
	}

	if config.NetworkPassphrase == "" {
		return errors.WrapValidationError("network passphrase is required")
	}

	if config.SorobanRPCURL == "" {
		return errors.WrapValidationError("SorobanRPCURL is required")
	}

	if err := isValidURL(config.SorobanRPCURL); err != nil {
		return errors.WrapValidationError(fmt.Sprintf("invalid SorobanRPCURL: %v", err))
	}

	if config.HorizonURL != "" {
		if err := isValidURL(config.HorizonURL); err != nil {
			return errors.WrapValidationError(fmt.Sprintf("invalid HorizonURL: %v", err))
		}
	}

	return nil
}

// ValidateTransactionHash checks that hash is a 64-character hex string.
// The check is case-insensitive.
func ValidateTransactionHash(hash string) error {
	if len(hash) != 64 {
		return errors.WrapValidationError(fmt.Sprintf("transaction hash must be exactly 64 characters long, got %d", len(hash)))
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return errors.WrapValidationError("transaction hash must contain only valid hexadecimal characters")
	}
	return nil
}
