package render

import (
	"fmt"
	"strings"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

// Text produces a human-readable summary of a resolved graph.
func Text(h *flowchart.Hierarchy, g *flowchart.ResolvedGraph) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Flowchart: %d steps (%d implied), %d data sources, %d edges\n",
		len(g.Steps), len(g.Implied), len(g.Data), len(g.Edges))

	gaps := map[int]bool{}
	for _, id := range g.Gaps(h) {
		gaps[id] = true
	}

	// Column width for the vertex label.
	maxLen := 4
	for _, id := range g.Steps {
		if l := len(h.Step(id).Label()); l > maxLen {
			maxLen = l
		}
	}

	fmt.Fprintf(&sb, "\nSteps:\n")
	for _, id := range g.Steps {
		step := h.Step(id)
		var notes []string
		if g.IsImplied(id) {
			notes = append(notes, "implied")
		}
		if gaps[id] {
			notes = append(notes, "no source")
		}
		if step.IsRoot() {
			notes = append(notes, "root")
		}
		fmt.Fprintf(&sb, "  %-*s  %-12s  %s\n", maxLen, step.Label(), step.Expr.String(), strings.Join(notes, ", "))
	}

	if len(g.Data) > 0 {
		fmt.Fprintf(&sb, "\nData:\n")
		for _, d := range g.Data {
			fmt.Fprintf(&sb, "  %s\n", d)
		}
	}

	fmt.Fprintf(&sb, "\nEdges:\n")
	maxFromLen := 4
	for _, e := range g.Edges {
		if l := len(e.From.String()); l > maxFromLen {
			maxFromLen = l
		}
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "  %-*s  →  %d\n", maxFromLen, e.From, e.To)
	}

	return sb.String()
}
