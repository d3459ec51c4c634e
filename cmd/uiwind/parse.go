package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/uiwind/pkg/token"
)

// classReport is one class as the parse command prints it.
type classReport struct {
	token.UtilityToken
	Canonical string `json:"canonical"`
	Matched   bool   `json:"matched"`
	Rule      string `json:"rule,omitempty"`
	Layer     string `json:"layer,omitempty"`
	CSS       string `json:"css,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newParseCmd(root *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <class>...",
		Short: "Show how classes are parsed and the CSS each resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			reports := p.parseClasses(args)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, r := range reports {
				printClassReport(cmd, r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")

	return cmd
}

// parseClasses reports every whitespace-separated class in args.
func (p *project) parseClasses(args []string) []classReport {
	var reports []classReport
	for _, arg := range args {
		for _, raw := range strings.Fields(arg) {
			tok, err := p.bridge.Parse(raw, token.ParseE)
			r := classReport{UtilityToken: tok}
			if err != nil {
				r.UtilityToken = token.UtilityToken{Original: raw}
				r.Error = err.Error()
				reports = append(reports, r)
				continue
			}
			r.Canonical = tok.Canonical()
			if res, ok := p.compiler.Resolve(tok); ok {
				r.Matched = true
				r.Rule = res.Rule
				r.Layer = res.Layer.String()
				r.CSS = res.CSS
			}
			reports = append(reports, r)
		}
	}
	return reports
}

func printClassReport(cmd *cobra.Command, r classReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, r.Original)
	if r.Error != "" {
		fmt.Fprintf(out, "  error:     %s\n", r.Error)
		return
	}
	if len(r.Variants) > 0 {
		fmt.Fprintf(out, "  variants:  %s\n", strings.Join(r.Variants, ", "))
	}
	fmt.Fprintf(out, "  utility:   %s\n", r.Utility)
	if r.HasArbitrary {
		fmt.Fprintf(out, "  arbitrary: %s\n", r.Arbitrary)
	}
	var flags []string
	if r.Negative {
		flags = append(flags, "negative")
	}
	if r.Important {
		flags = append(flags, "important")
	}
	if r.Opacity != "" {
		flags = append(flags, "opacity "+r.Opacity)
	}
	if len(flags) > 0 {
		fmt.Fprintf(out, "  modifiers: %s\n", strings.Join(flags, ", "))
	}
	if !r.Matched {
		fmt.Fprintln(out, "  (no matching rule)")
		return
	}
	fmt.Fprintf(out, "  rule:      %s [%s]\n", r.Rule, r.Layer)
	fmt.Fprintf(out, "  css:       %s\n", r.CSS)
}
