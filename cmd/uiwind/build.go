package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type buildOptions struct {
	output    string
	themeVars bool
	stats     bool
}

func newBuildCmd(root *rootFlags) *cobra.Command {
	opts := buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan content files and write the generated stylesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (\"-\" for stdout); defaults to the configured output")
	cmd.Flags().BoolVar(&opts.themeVars, "theme-vars", false, "Prepend theme colour custom properties")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print build statistics as JSON to stderr")

	return cmd
}

func runBuild(cmd *cobra.Command, root *rootFlags, opts buildOptions) error {
	p, err := openProject(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	start := time.Now()
	res, err := p.build(cmd.Context(), opts.themeVars)
	if err != nil {
		return err
	}

	out := p.outputPath(opts.output)
	if err := writeOutput(cmd.OutOrStdout(), out, res.CSS); err != nil {
		return err
	}

	p.logger.Info("Build complete",
		"files", res.Files,
		"candidates", res.Candidates,
		"rules", res.Rules,
		"bytes", res.Bytes,
		"output", out,
		"duration", time.Since(start))

	if opts.stats {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), string(data))
	}
	return nil
}
