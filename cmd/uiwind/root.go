package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/uiwind/pkg/config"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "uiwind",
		Short:         "uiwind compiles utility classes found in your sources into CSS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultFile, "Path to the project configuration file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newThemeCmd(flags))
	cmd.AddCommand(newParseCmd(flags))
	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
