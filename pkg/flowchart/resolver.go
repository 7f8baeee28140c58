package flowchart

import (
	"log/slog"
	"sort"
)

type visitState uint8

const (
	unvisited visitState = iota
	open
	done
)

// resolver holds the per-call state of one Resolve invocation. Steps are
// kept in arenas indexed by their position among the hierarchy's ids, so the
// arenas stay as large as the step count whatever the ids are.
type resolver struct {
	h         *Hierarchy
	available map[string]bool
	slot      map[int]int
	state     []visitState
	usable    []bool
	preds     [][]Ref
}

// Resolve computes the sub-graph to render for the requested steps when only
// the given data tokens are present.
//
// A data token is available when it is listed in available. A step is
// available when it is a root step or when at least one of its predecessors
// is available. Each Exclusive group contributes its first available member
// and each Inclusive group all of its available members. Unrequested steps
// that requested steps depend on are added to the graph; requested steps
// with nothing available stay in the graph without incoming edges.
//
// Resolve does not modify h and keeps no state between calls.
func Resolve(h *Hierarchy, requested []int, available []string) (*ResolvedGraph, error) {
	ids := h.IDs()
	size := len(ids)
	r := &resolver{
		h:         h,
		available: make(map[string]bool, len(available)),
		slot:      make(map[int]int, size),
		state:     make([]visitState, size),
		usable:    make([]bool, size),
		preds:     make([][]Ref, size),
	}
	for i, id := range ids {
		r.slot[id] = i
	}
	for _, tok := range available {
		r.available[tok] = true
	}

	req := dedupeSorted(requested)
	for _, id := range req {
		if h.Steps[id] == nil {
			return nil, UnknownStepError{Step: id}
		}
	}
	for _, id := range req {
		if err := r.visit(id); err != nil {
			return nil, err
		}
	}

	g := &ResolvedGraph{
		Requested: req,
		Preds:     make(map[int][]Ref),
	}

	// Walk backwards from the requested steps along effective edges.
	rendered := make(map[int]bool, len(req))
	usedData := make(map[string]bool)
	queue := append([]int(nil), req...)
	for _, id := range req {
		rendered[id] = true
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		preds := r.preds[r.slot[id]]
		g.Preds[id] = preds
		for _, c := range preds {
			if c.IsData() {
				usedData[c.Data] = true
				continue
			}
			if !rendered[c.Step] {
				rendered[c.Step] = true
				g.Implied = append(g.Implied, c.Step)
				queue = append(queue, c.Step)
			}
		}
	}

	for id := range rendered {
		g.Steps = append(g.Steps, id)
	}
	sort.Ints(g.Steps)
	sort.Ints(g.Implied)
	for _, tok := range h.Sources {
		if usedData[tok] {
			g.Data = append(g.Data, tok)
		}
	}
	for _, id := range g.Steps {
		for _, c := range g.Preds[id] {
			g.Edges = append(g.Edges, Edge{From: c, To: id})
		}
	}

	slog.Debug("resolved request",
		"requested", len(g.Requested),
		"implied", len(g.Implied),
		"edges", len(g.Edges),
		"available", available)
	return g, nil
}

type frame struct {
	id       int
	expanded bool
}

// visit resolves id and every step it can depend on, post-order, using an
// explicit stack. Expanded frames still on the stack form the current path,
// so meeting an open step again means the hierarchy has a cycle.
func (r *resolver) visit(root int) error {
	stack := []frame{{id: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		i := r.slot[top.id]
		if r.state[i] == done {
			stack = stack[:len(stack)-1]
			continue
		}

		step := r.h.Steps[top.id]
		if !top.expanded {
			top.expanded = true
			r.state[i] = open
			cands := step.Expr.Candidates()
			for k := len(cands) - 1; k >= 0; k-- {
				c := cands[k]
				if c.IsData() {
					continue
				}
				if r.h.Steps[c.Step] == nil {
					return UnknownStepError{Step: c.Step}
				}
				switch r.state[r.slot[c.Step]] {
				case open:
					return CycleError{Path: cyclePath(stack, c.Step)}
				case unvisited:
					stack = append(stack, frame{id: c.Step})
				}
			}
			continue
		}

		r.preds[i] = r.effective(step)
		r.usable[i] = step.IsRoot() || len(r.preds[i]) > 0
		r.state[i] = done
		slog.Debug("resolved step", "step", top.id, "preds", len(r.preds[i]), "available", r.usable[i])
		stack = stack[:len(stack)-1]
	}
	return nil
}

// effective applies the group semantics of step's expression. Every step
// candidate must already be done.
func (r *resolver) effective(step *Step) []Ref {
	var out []Ref
	seen := make(map[Ref]bool)
	add := func(c Ref) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, g := range step.Expr {
		for _, c := range g.Members {
			if !r.isAvailable(c) {
				continue
			}
			add(c)
			if g.Kind == Exclusive {
				break
			}
		}
	}
	return out
}

func (r *resolver) isAvailable(c Ref) bool {
	if c.IsData() {
		return r.available[c.Data]
	}
	return r.usable[r.slot[c.Step]]
}

func cyclePath(stack []frame, back int) []int {
	var path []int
	for _, f := range stack {
		if !f.expanded {
			continue
		}
		if f.id == back || len(path) > 0 {
			path = append(path, f.id)
		}
	}
	return append(path, back)
}

func dedupeSorted(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
