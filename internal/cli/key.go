package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/internal/app"
)

func (r *runtime) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <api-key>",
		Short: "Store the API key in the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Credentials.SetAPIKey(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(r.out, "API key saved.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Credentials.ClearAPIKey(ctx); err != nil {
					return err
				}
				fmt.Fprintln(r.out, "API key cleared.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, err := a.Credentials.APIKey(ctx)
				switch {
				case err == nil:
					fmt.Fprintln(r.out, "API key: configured")
				case errors.Is(err, domain.ErrCredentialMissing):
					fmt.Fprintln(r.out, "API key: not configured")
				default:
					return err
				}
				return nil
			})
		},
	})
	return cmd
}
