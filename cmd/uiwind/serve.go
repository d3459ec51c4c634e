package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/uiwind/pkg/mcp"
	"github.com/gnana997/uiwind/pkg/mcplog"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			callLog, err := mcplog.NewLogger(logFile)
			if err != nil {
				return err
			}
			if callLog != nil {
				callLog.SetLogger(p.logger)
				defer callLog.Close()
			}

			srv := mcpserver.NewServer(p.compiler, mcpserver.Options{
				DarkStrategy: p.cfg.DarkStrategy(),
				DarkSelector: p.cfg.DarkMode.Selector,
				TreeShake:    p.cfg.TreeShake,
				Bridge:       p.bridge,
				CallLog:      callLog,
			})
			p.logger.Info("MCP server starting", "rules", p.registry.Len(), "call_log", logFile)
			return srv.ServeStdio()
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Append one JSON line per tool call to this file")

	return cmd
}
