// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/shutdown"
	"github.com/dotandev/tranche/internal/tranche"
)

const shutdownTimeout = 3 * time.Second

var shutdownState struct {
	mu          sync.RWMutex
	coordinator *shutdown.Coordinator
}

func setShutdownCoordinator(c *shutdown.Coordinator) {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = c
}

func clearShutdownCoordinator() {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = nil
}

func registerShutdownHook(name string, fn shutdown.HookFunc) {
	shutdownState.mu.RLock()
	c := shutdownState.coordinator
	shutdownState.mu.RUnlock()
	if c == nil {
		return
	}
	c.Register(name, fn)
}

func runShutdownHooks(c *shutdown.Coordinator) {
	if c == nil {
		return
	}
	if err := c.RunWithTimeout(shutdownTimeout); err != nil {
		logger.Logger.Warn("Shutdown hooks completed with errors", "error", err)
	}
}

// registerSessionCloseHook drops the wallet session when the process exits.
func registerSessionCloseHook(svc *tranche.Service) {
	registerShutdownHook("wallet-session", func(context.Context) error {
		return svc.Disconnect()
	})
}

// executeWithSignals runs fn and the shutdown hooks. A signal cancels fn's
// context; fn gets shutdownTimeout to return before hooks run regardless.
func executeWithSignals(
	ctx context.Context,
	cancel context.CancelFunc,
	sigCh <-chan os.Signal,
	c *shutdown.Coordinator,
	fn func(context.Context) error,
) error {
	setShutdownCoordinator(c)
	defer clearShutdownCoordinator()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		runShutdownHooks(c)
		return err
	case sig := <-sigCh:
		logger.Logger.Info("Interrupt received, shutting down", "signal", sig.String())
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			logger.Logger.Warn("Command did not stop in time")
		}
		runShutdownHooks(c)
		return ErrInterrupted
	}
}
