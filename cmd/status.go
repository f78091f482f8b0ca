package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/challenge-harvester/internal/adapters/render/status"
	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/spf13/cobra"
)

// tokenSource is implemented by both the remote collector client and the local store.
type tokenSource interface {
	List(ctx context.Context) (application.TokenList, error)
	Latest(ctx context.Context) (domain.TokenRecord, error)
}

func newStatusCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		latest bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the tokens held by the collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, label, err := app.tokenSource(cmd.Context(), local)
			if err != nil {
				return err
			}

			if latest {
				return writeLatestToken(cmd, source, asJSON)
			}

			var list application.TokenList
			fetch := func(ctx context.Context) error {
				var err error
				list, err = source.List(ctx)
				return err
			}

			if asJSON || local {
				err = fetch(cmd.Context())
			} else {
				err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, fetch)
			}
			if err != nil {
				return err
			}

			return writeTokensOutput(cmd, app, list, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&latest, "latest", false, "Print only the most recent token")
	cmd.Flags().BoolVar(&local, "local", false, "Read the local token store instead of the remote collector")

	return cmd
}

func (a *app) tokenSource(ctx context.Context, local bool) (tokenSource, string, error) {
	if local {
		return a.tokens, "Reading local tokens...", nil
	}

	client, err := a.collectorClient(ctx)
	if err != nil {
		return nil, "", err
	}

	return client, "Fetching tokens from collector...", nil
}

func writeLatestToken(cmd *cobra.Command, source tokenSource, asJSON bool) error {
	record, err := source.Latest(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), record.Token)
	return err
}

func writeTokensOutput(cmd *cobra.Command, app *app, list application.TokenList, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	rendered, err := app.statusRenderer(list, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render tokens: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
