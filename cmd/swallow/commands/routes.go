package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/pkg/config"
)

func newRoutesCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes",
		Long:  "List the application routes in match order, without connecting to any backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(cmd.Context(), f.loadOptions()...)
			if err != nil {
				return err
			}

			app, err := buildRoutesOnly(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tPATTERN")
			for _, rt := range app.Routes() {
				fmt.Fprintf(tw, "%s\t%s\n", rt.Method(), rt.Pattern())
			}
			return tw.Flush()
		},
	}
}

// buildRoutesOnly mounts the application without a database or caches.
func buildRoutesOnly(cfg config.Config) (*swallow.App, error) {
	opts, err := appOptions(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return swallow.New(opts...), nil
}
