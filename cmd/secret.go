package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys referenced by collector.api_key_ref and server.api_key_ref",
	}

	cmd.AddCommand(newSecretSetCmd(app), newSecretDeleteCmd(app), newSecretListCmd(app))

	return cmd
}

func newSecretSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <ref>",
		Short: "Store a secret under ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.secretStore.Put(cmd.Context(), args[0], value); err != nil {
				return fmt.Errorf("store secret %q: %w", args[0], err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stored secret %s\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newSecretDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete the secret stored under ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.secretStore.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete secret %q: %w", args[0], err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted secret %s\n", args[0])
			return err
		},
	}
}

func newSecretListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List refs kept in the file store and the config keys that use them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs, err := app.fileSecrets.List(cmd.Context())
			if err != nil {
				return err
			}

			usedBy := map[string][]string{}
			for _, binding := range []struct {
				key string
				ref string
			}{
				{key: "collector.api_key_ref", ref: app.cfg.Collector.APIKeyRef},
				{key: "server.api_key_ref", ref: app.cfg.Server.APIKeyRef},
			} {
				if binding.ref != "" {
					usedBy[binding.ref] = append(usedBy[binding.ref], binding.key)
				}
			}

			out := cmd.OutOrStdout()
			for _, ref := range refs {
				line := ref
				if keys := usedBy[ref]; len(keys) > 0 {
					line += " (" + strings.Join(keys, ", ") + ")"
					delete(usedBy, ref)
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			for _, binding := range []string{app.cfg.Collector.APIKeyRef, app.cfg.Server.APIKeyRef} {
				if keys, ok := usedBy[binding]; ok {
					if _, err := fmt.Fprintf(out, "%s (%s) not in file store\n", binding, strings.Join(keys, ", ")); err != nil {
						return err
					}
					delete(usedBy, binding)
				}
			}

			return nil
		},
	}
}
