// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsLIFOAndOnce(t *testing.T) {
	c := NewCoordinator()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		c.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	c.Register("nil", nil)
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"third", "second", "first"}, order)

	order = nil
	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, order)
	assert.Zero(t, c.Len())
}

func TestRegisterAfterRunIsIgnored(t *testing.T) {
	c := NewCoordinator()
	require.NoError(t, c.Run(context.Background()))

	c.Register("late", func(context.Context) error { return errors.New("should not run") })
	assert.Zero(t, c.Len())
	assert.NoError(t, c.Run(context.Background()))
}

func TestRunJoinsErrorsAndContinues(t *testing.T) {
	c := NewCoordinator()
	ran := 0
	c.Register("ok", func(context.Context) error { ran++; return nil })
	c.Register("flush", func(context.Context) error { ran++; return errors.New("disk full") })
	c.Register("close", func(context.Context) error { ran++; return errors.New("already closed") })

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, ran)
	assert.Contains(t, err.Error(), "flush: disk full")
	assert.Contains(t, err.Error(), "close: already closed")
}

func TestHooksShareDeadline(t *testing.T) {
	c := NewCoordinator()
	var budgets []time.Duration
	for i := 0; i < 2; i++ {
		c.Register("hook", func(ctx context.Context) error {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			budgets = append(budgets, time.Until(deadline))
			return nil
		})
	}

	require.NoError(t, c.RunWithTimeout(time.Second))
	require.Len(t, budgets, 2)
	// the first hook to run gets half of the total budget
	assert.LessOrEqual(t, budgets[0], 500*time.Millisecond)
	assert.Greater(t, budgets[1], budgets[0]/2)
}

func TestHookSeesExpiredDeadline(t *testing.T) {
	c := NewCoordinator()
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.ErrorIs(t, c.Run(ctx), context.DeadlineExceeded)
}
