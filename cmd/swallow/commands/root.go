// Package commands implements the swallow command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/swallow/pkg/config"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// flags shared by the commands that build the application.
type flags struct {
	configPath string
	dotenv     string
}

func newRootCmd(version string) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "swallow",
		Short: "Swallow - a small MVC web framework",
		Long: `Swallow serves an action-based MVC application: routes dispatch to
controller actions, which use the query builder, entity models and caches.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&f.dotenv, "env-file", config.DefaultDotEnv, "dotenv file, empty to disable")

	cmd.AddCommand(newServeCmd(f))
	cmd.AddCommand(newRoutesCmd(f))

	return cmd
}

func (f *flags) loadOptions() []config.Option {
	return []config.Option{
		config.WithFile(f.configPath),
		config.WithDotEnv(f.dotenv),
	}
}
