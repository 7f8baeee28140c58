package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ravi-parthasarathy/flowchart/pkg/config"
	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
	"github.com/ravi-parthasarathy/flowchart/pkg/render"
)

// ─── render ───────────────────────────────────────────────────────────────────

func renderCmd(a *app) *cobra.Command {
	var (
		stepSpecs []string
		sel       dataSelection
		outDir    string
		format    string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "render <hierarchy>",
		Short: "Write the flowchart of one or more step selections",
		Long: `Render writes one Graphviz file per --steps selection into the output
directory and, unless --format is empty, lays it out with the dot binary.
Selections are rendered concurrently against the same parsed hierarchy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHierarchy(args[0], a.cfg.Sources)
			if err != nil {
				return err
			}
			available, err := sel.tokens(h.Sources)
			if err != nil {
				return err
			}
			if len(stepSpecs) == 0 {
				return fmt.Errorf("at least one --steps selection is required")
			}

			layout := a.cfg.Layout
			if cmd.Flags().Changed("format") {
				layout.Format = format
			}
			if !cmd.Flags().Changed("out") {
				outDir = a.cfg.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			var outMu sync.Mutex
			g, gctx := errgroup.WithContext(ctx)
			for _, spec := range uniqueSpecs(stepSpecs) {
				job := renderJob{
					hierarchyPath: args[0],
					hierarchy:     h,
					steps:         spec,
					available:     available,
					outDir:        outDir,
					layout:        layout,
					strict:        strict,
				}
				g.Go(func() error {
					path, err := job.run(gctx)
					if err != nil {
						return fmt.Errorf("steps %q: %w", job.steps, err)
					}
					outMu.Lock()
					defer outMu.Unlock()
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringArrayVar(&stepSpecs, "steps", nil, `steps executed in the run, e.g. "1-5" or "2,4-8" (repeatable)`)
	sel.bind(cmd)
	cmd.Flags().StringVar(&outDir, "out", "flowcharts", "output directory")
	cmd.Flags().StringVar(&format, "format", "pdf", `image format passed to dot; "" writes the .gv file only`)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail, writing an error diagram, when a step has no available input")
	return cmd
}

// renderJob renders one step selection. Jobs share the hierarchy read-only.
type renderJob struct {
	hierarchyPath string
	hierarchy     *flowchart.Hierarchy
	steps         string
	available     []string
	outDir        string
	layout        config.LayoutConfig
	strict        bool
}

// run resolves and writes the job's diagram, returning the path of the final
// artefact: the image when a layout format is set, the .gv file otherwise.
func (j renderJob) run(ctx context.Context) (string, error) {
	ids, err := flowchart.ParseSteps(j.steps)
	if err != nil {
		return "", err
	}
	g, err := flowchart.Resolve(j.hierarchy, ids, j.available)
	if err != nil {
		return "", err
	}

	gaps := g.Gaps(j.hierarchy)
	for _, id := range gaps {
		slog.Warn("step has no available input", "step", id, "steps", j.steps)
	}

	if j.strict && len(gaps) > 0 {
		src, err := render.ErrorDOT(render.NoSourceMessage)
		if err != nil {
			return "", err
		}
		path := filepath.Join(j.outDir, outputName(j.hierarchyPath, j.steps, j.available, true))
		if err := render.WriteFile(path, []byte(src)); err != nil {
			return "", err
		}
		return "", fmt.Errorf("steps %v have no available input (see %s)", gaps, path)
	}

	src, err := render.DOT(j.hierarchy, g)
	if err != nil {
		return "", err
	}
	path := filepath.Join(j.outDir, outputName(j.hierarchyPath, j.steps, j.available, false))
	if err := render.WriteFile(path, []byte(src)); err != nil {
		return "", err
	}
	slog.Info("flowchart written", "path", path, "steps", len(g.Steps), "edges", len(g.Edges))

	if j.layout.Format == "" {
		return path, nil
	}
	return render.Layout(ctx, j.layout.Binary, j.layout.Format, path)
}

// uniqueSpecs drops selections that would write the same output file as an
// earlier one. outputName ignores spaces, so "1-3" and "1 - 3" collide.
func uniqueSpecs(specs []string) []string {
	seen := make(map[string]bool, len(specs))
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		key := strings.ReplaceAll(spec, " ", "")
		if seen[key] {
			slog.Debug("skipping repeated step selection", "steps", spec)
			continue
		}
		seen[key] = true
		out = append(out, spec)
	}
	return out
}

// outputName builds "<hierarchy>-<steps>.<data...>[.error].gv", the data
// tokens lowercased in the order given.
func outputName(hierarchyPath, steps string, available []string, failed bool) string {
	parts := []string{filepath.Base(hierarchyPath) + "-" + strings.ReplaceAll(steps, " ", "")}
	for _, tok := range available {
		parts = append(parts, strings.ToLower(tok))
	}
	if failed {
		parts = append(parts, "error")
	}
	parts = append(parts, "gv")
	return strings.Join(parts, ".")
}
