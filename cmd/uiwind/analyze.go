package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/uiwind/pkg/extract"
	"github.com/gnana997/uiwind/pkg/treeshake"
)

// analysisReport summarizes what the project's content uses.
type analysisReport struct {
	Files      int                `json:"files"`
	Candidates int                `json:"candidates"`
	Generated  int                `json:"generated_rules"`
	Usage      treeshake.Usage    `json:"usage"`
	Shake      treeshake.Analysis `json:"tree_shake"`
}

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report rule usage and what tree-shaking would remove",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			report, err := p.analyze(cmd)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files scanned:     %d\n", report.Files)
			fmt.Fprintf(out, "Class candidates:  %d\n", report.Candidates)
			fmt.Fprintf(out, "Generated rules:   %d\n", report.Generated)
			fmt.Fprintf(out, "Variants used:     %d\n", len(report.Usage.Variants))
			fmt.Fprintf(out, "Registry rules:    %d used / %d total (%.1f%%)\n",
				report.Shake.UsedRules, report.Shake.TotalRules, report.Shake.Effectiveness)
			fmt.Fprintf(out, "Estimated savings: %d bytes\n", report.Shake.MemorySaved)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// analyze always shakes, regardless of the configured Enabled flag, so the
// report shows what enabling it would save.
func (p *project) analyze(cmd *cobra.Command) (analysisReport, error) {
	paths, err := p.discover()
	if err != nil {
		return analysisReport{}, err
	}
	byFile, err := p.extractAll(cmd.Context(), paths)
	if err != nil {
		return analysisReport{}, err
	}
	candidates := extract.Merge(paths, byFile)

	opts := p.cfg.TreeShake
	opts.Enabled = true
	shaker := treeshake.New(opts, p.logger)
	analysis := shaker.Analyze(p.registry.Rules(), candidates)

	return analysisReport{
		Files:      len(paths),
		Candidates: len(candidates),
		Generated:  len(p.compiler.GenerateRules(candidates)),
		Usage:      shaker.Usage(),
		Shake:      analysis,
	}, nil
}
