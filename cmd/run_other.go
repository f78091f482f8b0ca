//go:build !unix

package cmd

import (
	"context"
	"log/slog"

	"github.com/bnema/challenge-harvester/internal/application"
)

func watchStrategySignals(context.Context, *application.Controller, *slog.Logger) func() {
	return func() {}
}
