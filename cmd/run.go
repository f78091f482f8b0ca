package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/challenge-harvester/internal/adapters/render/status"
	execwidget "github.com/bnema/challenge-harvester/internal/adapters/widget/exec"
	promptwidget "github.com/bnema/challenge-harvester/internal/adapters/widget/prompt"
	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the harvesting scheduler until interrupted",
		Long: "run arms the scheduler and keeps harvesting until SIGINT or SIGTERM. " +
			"On unix, SIGUSR1 forces the unattended strategy and SIGUSR2 the interactive one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != "" {
				app.cfg.Mode = domain.SelectionMode(mode)
			}

			policy, err := app.cfg.Policy()
			if err != nil {
				return err
			}
			if err := app.cfg.ValidateCollector(); err != nil {
				return err
			}

			widgets, err := app.widgets(cmd, policy.Selection)
			if err != nil {
				return err
			}

			client, err := app.collectorClient(cmd.Context())
			if err != nil {
				return err
			}

			controller, err := application.NewController(policy, application.ControllerDeps{
				Widgets:   widgets,
				Submitter: application.NewSubmitter(client, app.cfg.Submitter(), app.logger),
				Publisher: statusadapter.NewPublisher(cmd.OutOrStdout()),
				Clock:     ports.SystemClock{},
				Logger:    app.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := controller.Start(ctx); err != nil {
				return err
			}

			stopWatching := watchStrategySignals(ctx, controller, app.logger)
			defer stopWatching()

			select {
			case <-ctx.Done():
				controller.Stop()
			case <-controller.Done():
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), statusadapter.Summary(controller.Status()))
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Strategy selection: auto, forced-unattended or forced-interactive")

	return cmd
}

func (a *app) widgets(cmd *cobra.Command, selection domain.SelectionMode) (application.Capabilities, error) {
	var widgets application.Capabilities

	if selection != domain.SelectionForcedInteractive {
		if len(a.cfg.Widget.Command) == 0 {
			return widgets, domain.NewConfigError("widget.command", "an unattended helper command is required in %s mode", selection)
		}
		widgets.Unattended = execwidget.New(a.cfg.Widget.Command, a.logger)
	}
	if selection != domain.SelectionForcedUnattended {
		widgets.Interactive = promptwidget.New(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return widgets, nil
}
