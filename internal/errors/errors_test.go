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

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")

	wrappedErr := WrapAccountUnavailable("GABC", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrAccountUnavailable))
	assert.True(t, errors.Is(wrappedErr, baseErr))
	assert.Contains(t, wrappedErr.Error(), "GABC")

	wrappedErr = WrapSigningRejected(baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrSigningRejected))
	assert.True(t, errors.Is(wrappedErr, baseErr))

	wrappedErr = WrapSubmissionFailed("status ERROR", nil)
	assert.True(t, errors.Is(wrappedErr, ErrSubmissionFailed))
	assert.Contains(t, wrappedErr.Error(), "status ERROR")

	wrappedErr = WrapSimulationFailed("HostError: Error(Contract, #3)")
	assert.True(t, errors.Is(wrappedErr, ErrSimulationFailed))
	assert.Contains(t, wrappedErr.Error(), "Error(Contract, #3)")

	wrappedErr = WrapMalformedAmount("1.2.3")
	assert.True(t, errors.Is(wrappedErr, ErrMalformedAmount))
	assert.Contains(t, wrappedErr.Error(), `"1.2.3"`)

	wrappedErr = WrapInvalidAddress("nope", nil)
	assert.True(t, errors.Is(wrappedErr, ErrInvalidAddress))

	wrappedErr = WrapConfigError("failed to read config file", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrConfig))
	assert.True(t, errors.Is(wrappedErr, baseErr))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"malformed", WrapMalformedAmount("x"), "MalformedAmount"},
		{"unknown variant", WrapUnknownVariant("Mezzanine"), "UnknownVariant"},
		{"account", WrapAccountUnavailable("G", errors.New("404")), "AccountUnavailable"},
		{"simulation", WrapSimulationFailed("boom"), "SimulationFailed"},
		{"signing", WrapSigningRejected(errors.New("user declined")), "SigningRejected"},
		{"submission", WrapSubmissionFailed("ERROR", nil), "SubmissionFailed"},
		{"not connected", ErrNotConnected, "NotConnected"},
		{"nested", fmt.Errorf("subscribe: %w", ErrNotConnected), "NotConnected"},
		{"network", WrapInvalidNetwork("moonnet"), "Config"},
		{"plain", errors.New("something else"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSimulationKindWinsOverCause(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrSimulationFailed, ErrContractUninitialized)
	assert.Equal(t, "SimulationFailed", KindOf(err))
	assert.True(t, Is(err, ErrContractUninitialized))
}
