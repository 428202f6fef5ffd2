package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCmd(opts *Options, connect Connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Inspect content types",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the only-one content types that can back an error page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, opts, connect, func(ctx context.Context, d *Deps) error {
				names, err := d.Singletons.AvailableContentTypes(ctx)
				if err != nil {
					return fmt.Errorf("list content types: %w", err)
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no only-one content types")
					return nil
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	})
	return cmd
}
