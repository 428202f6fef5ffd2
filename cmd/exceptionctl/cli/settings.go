package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/dalemusser/exceptionpages/internal/app/system/urlgen"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// settingKeys is the print order of the exception.settings keys.
var settingKeys = []string{models.ClientErrorKey, models.AccessDeniedKey, models.NotFoundKey}

func newSettingsCmd(opts *Options, connect Connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change which content type replaces each error page",
	}
	cmd.AddCommand(
		newSettingsGetCmd(opts, connect),
		newSettingsSetCmd(opts, connect),
		newSettingsResetCmd(opts, connect),
	)
	return cmd
}

func newSettingsGetCmd(opts *Options, connect Connector) *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the configured content type for 40x, 403 and 404",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, opts, connect, func(ctx context.Context, d *Deps) error {
				rec, err := d.Config.Get(ctx, models.ExceptionConfigName)
				if err != nil {
					return fmt.Errorf("load settings: %w", err)
				}
				s := models.ExceptionSettingsFromRecord(rec)
				if !resolve {
					return printSettings(cmd.OutOrStdout(), s)
				}
				langs, err := opts.languages()
				if err != nil {
					return err
				}
				return printResolved(ctx, cmd.OutOrStdout(), d, s, langs, opts.BaseURL)
			})
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "also print the node each setting resolves to per language")
	return cmd
}

func newSettingsSetCmd(opts *Options, connect Connector) *cobra.Command {
	var values = map[string]*string{}
	var force bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; flags not given keep their value and an empty value clears",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]string{}
			for _, key := range settingKeys {
				if cmd.Flags().Changed(key) {
					changed[key] = *values[key]
				}
			}
			if len(changed) == 0 {
				return fmt.Errorf("nothing to set: pass at least one of --40x, --403, --404")
			}

			return withDeps(cmd, opts, connect, func(ctx context.Context, d *Deps) error {
				if !force {
					available, err := d.Singletons.AvailableContentTypes(ctx)
					if err != nil {
						return fmt.Errorf("list content types: %w", err)
					}
					for key, v := range changed {
						if v != "" && !slices.Contains(available, v) {
							return fmt.Errorf("--%s: %q is not an only-one content type (use --force to set it anyway)", key, v)
						}
					}
				}

				rec, err := d.Config.Get(ctx, models.ExceptionConfigName)
				if err != nil {
					return fmt.Errorf("load settings: %w", err)
				}
				data := models.ExceptionSettingsFromRecord(rec).Values()
				for key, v := range changed {
					data[key] = v
				}
				next := models.ConfigRecord{
					Name:          models.ExceptionConfigName,
					Data:          data,
					UpdatedByName: "exceptionctl",
				}
				if err := d.Config.Save(ctx, next); err != nil {
					return fmt.Errorf("save settings: %w", err)
				}
				d.Log.Info("exception settings updated", zap.Any("values", data))
				return printSettings(cmd.OutOrStdout(), models.ExceptionSettingsFromRecord(next))
			})
		},
	}
	for _, key := range settingKeys {
		values[key] = cmd.Flags().String(key, "", "content type for "+key+" responses")
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip the only-one content type check")
	return cmd
}

func newSettingsResetCmd(opts *Options, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove the settings record so every error uses the default page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, opts, connect, func(ctx context.Context, d *Deps) error {
				saved, err := d.Config.Exists(ctx, models.ExceptionConfigName)
				if err != nil {
					return fmt.Errorf("check settings: %w", err)
				}
				if !saved {
					fmt.Fprintln(cmd.OutOrStdout(), "no exception settings saved; defaults already apply")
					return nil
				}
				if err := d.Config.Delete(ctx, models.ExceptionConfigName); err != nil {
					return fmt.Errorf("reset settings: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "exception settings cleared")
				return nil
			})
		},
	}
}

func printSettings(out io.Writer, s models.ExceptionSettings) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, key := range settingKeys {
		fmt.Fprintf(tw, "%s\t%s\n", key, orDefault(s.TypeFor(key)))
	}
	return tw.Flush()
}

func printResolved(ctx context.Context, out io.Writer, d *Deps, s models.ExceptionSettings, langs []string, baseURL string) error {
	urls := urlgen.New(langs[0])
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tLANG\tPAGE")
	for _, key := range settingKeys {
		ct := s.TypeFor(key)
		if ct == "" {
			fmt.Fprintf(tw, "%s\t%s\t\t(default)\n", key, orDefault(ct))
			continue
		}
		for _, lang := range langs {
			id, ok, err := d.Singletons.ExistsSingletonOfType(ctx, ct, lang)
			if err != nil {
				return fmt.Errorf("resolve %s in %s: %w", ct, lang, err)
			}
			page := "(default, no node)"
			if ok {
				path, err := urls.NodeURL(id, lang)
				if err != nil {
					return err
				}
				page = urlgen.Absolute(baseURL, path)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, ct, lang, page)
		}
	}
	return tw.Flush()
}

func orDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}
