// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	cleanup, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	cleanup()
}

func TestInitUnreachableCollector(t *testing.T) {
	ctx := context.Background()

	for _, endpoint := range []string{"http://127.0.0.1:37999", "127.0.0.1:37999"} {
		cleanup, err := Init(ctx, Config{
			Enabled:     true,
			ExporterURL: endpoint,
			ServiceName: "tranche-test",
		})
		require.NoError(t, err, endpoint)

		_, span := GetTracer().Start(ctx, "telemetry-test-span")
		span.End()
		cleanup()
	}
}

func TestGetTracer(t *testing.T) {
	tracer := GetTracer()
	assert.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "test-span")
	span.End()
}
