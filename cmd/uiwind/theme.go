package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/uiwind/pkg/theme"
)

type themeOptions struct {
	strategy string
	selector string
	mode     string
}

func newThemeCmd(root *rootFlags) *cobra.Command {
	opts := themeOptions{}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Print theme colour custom properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Dark mode strategy: class, media, selector or auto (default from config)")
	cmd.Flags().StringVar(&opts.selector, "selector", "", "Dark selector for the selector strategy")
	cmd.Flags().StringVar(&opts.mode, "mode", "all", "Which blocks to print: all, light or dark")

	return cmd
}

func runTheme(cmd *cobra.Command, root *rootFlags, opts themeOptions) error {
	p, err := openProject(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	strategy := p.cfg.DarkStrategy()
	if opts.strategy != "" {
		if strategy, err = theme.ParseStrategy(opts.strategy); err != nil {
			return err
		}
	}
	selector := opts.selector
	if selector == "" {
		selector = p.cfg.DarkMode.Selector
	}

	var css string
	switch opts.mode {
	case "all":
		css = p.store.ThemeCSS(strategy, selector)
	case "light":
		css = p.store.LightModeCSS()
	case "dark":
		css = p.store.DarkModeCSS(strategy, selector)
	default:
		return fmt.Errorf("unknown mode %q: want all, light or dark", opts.mode)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), css)
	return err
}
