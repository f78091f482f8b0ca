//go:build unix

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
)

// watchStrategySignals maps SIGUSR1 to the unattended strategy and SIGUSR2 to the
// interactive one.
func watchStrategySignals(ctx context.Context, controller *application.Controller, logger *slog.Logger) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case sig := <-signals:
				strategy := domain.StrategyUnattended
				if sig == syscall.SIGUSR2 {
					strategy = domain.StrategyInteractive
				}
				if err := controller.ForceStrategy(strategy); err != nil {
					logger.Warn("force strategy failed", "strategy", strategy, "error", err)
				}
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
