package flowchart

// Edge is a directed connection from a predecessor vertex to a step.
type Edge struct {
	From Ref
	To   int
}

// ResolvedGraph is the induced sub-graph selected for one request.
type ResolvedGraph struct {
	// Requested holds the step ids asked for, ascending and deduplicated.
	Requested []int
	// Steps holds every step vertex to render, ascending. It is a superset
	// of Requested.
	Steps []int
	// Implied holds the steps pulled in as ancestors of requested steps
	// without having been requested, ascending.
	Implied []int
	// Data holds the data-token vertices to render, in vocabulary order.
	Data []string
	// Preds maps each rendered step to its effective predecessors.
	Preds map[int][]Ref
	// Edges lists Preds as edges, by target step then predecessor order.
	Edges []Edge
}

// Vertices returns every vertex of the graph, data tokens first.
func (g *ResolvedGraph) Vertices() []Ref {
	out := make([]Ref, 0, len(g.Data)+len(g.Steps))
	for _, d := range g.Data {
		out = append(out, DataRef(d))
	}
	for _, id := range g.Steps {
		out = append(out, StepRef(id))
	}
	return out
}

// IncomingEdges returns the edges arriving at step id.
func (g *ResolvedGraph) IncomingEdges(id int) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// IsImplied reports whether step id was rendered without being requested.
func (g *ResolvedGraph) IsImplied(id int) bool {
	for _, s := range g.Implied {
		if s == id {
			return true
		}
	}
	return false
}

// Gaps returns the rendered steps that declare predecessors but have none
// available for this run. They are drawn as disconnected vertices.
func (g *ResolvedGraph) Gaps(h *Hierarchy) []int {
	var out []int
	for _, id := range g.Steps {
		if len(g.Preds[id]) == 0 && !h.Steps[id].IsRoot() {
			out = append(out, id)
		}
	}
	return out
}
