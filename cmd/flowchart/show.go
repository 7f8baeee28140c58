package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
	"github.com/ravi-parthasarathy/flowchart/pkg/render"
)

// ─── show ─────────────────────────────────────────────────────────────────────

func showCmd(a *app) *cobra.Command {
	var (
		steps  string
		sel    dataSelection
		format string
	)

	cmd := &cobra.Command{
		Use:   "show <hierarchy>",
		Short: "Print the resolved flowchart of a step selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHierarchy(args[0], a.cfg.Sources)
			if err != nil {
				return err
			}
			available, err := sel.tokens(h.Sources)
			if err != nil {
				return err
			}

			ids := h.IDs()
			if steps != "" {
				if ids, err = flowchart.ParseSteps(steps); err != nil {
					return err
				}
			}
			g, err := flowchart.Resolve(h, ids, available)
			if err != nil {
				return fmt.Errorf("resolve: %w", err)
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "text", "":
				fmt.Fprint(out, render.Text(h, g))
			case "dot":
				src, err := render.DOT(h, g)
				if err != nil {
					return err
				}
				fmt.Fprint(out, src)
			case "json":
				data, err := render.JSON(h, g)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("unknown format %q: use text, dot or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&steps, "steps", "", "steps executed in the run (default: every step)")
	sel.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, dot or json")
	return cmd
}
