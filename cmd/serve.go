package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/challenge-harvester/internal/adapters/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collection endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				app.cfg.Server.Listen = listen
			}
			if err := app.cfg.ValidateServer(); err != nil {
				return err
			}

			apiKey, err := app.serverAPIKey(cmd.Context())
			if err != nil {
				return err
			}
			if apiKey == "" {
				app.logger.Warn("collection endpoint is running without authentication")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(app.tokens, apiKey, app.logger)
			return server.New(app.cfg.Server.Listen, router, app.logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")

	return cmd
}
