package flowchart

import (
	"sort"
	"strconv"
	"strings"
)

// RefKind identifies what a predecessor candidate points at.
type RefKind int

const (
	KindStep RefKind = iota
	KindData
)

// Ref is a predecessor candidate and, after resolution, a vertex identifier.
// Exactly one of Step or Data is meaningful, selected by Kind.
type Ref struct {
	Kind RefKind
	Step int
	Data string
}

// StepRef returns a reference to step id.
func StepRef(id int) Ref { return Ref{Kind: KindStep, Step: id} }

// DataRef returns a reference to an external-data token.
func DataRef(token string) Ref { return Ref{Kind: KindData, Data: token} }

// IsData reports whether r names an external-data token.
func (r Ref) IsData() bool { return r.Kind == KindData }

// String returns the token exactly as it appears in a hierarchy file.
func (r Ref) String() string {
	if r.Kind == KindData {
		return r.Data
	}
	return strconv.Itoa(r.Step)
}

// GroupKind is the connector semantics of a predecessor group.
type GroupKind int

const (
	// Exclusive groups are joined by ',' and select the first available member.
	Exclusive GroupKind = iota
	// Inclusive groups are joined by '+' and select every available member.
	Inclusive
)

func (k GroupKind) String() string {
	if k == Inclusive {
		return "inclusive"
	}
	return "exclusive"
}

func (k GroupKind) connector() string {
	if k == Inclusive {
		return "+"
	}
	return ","
}

// Group is one requirement clause of a predecessor expression.
type Group struct {
	Kind    GroupKind
	Members []Ref // declared order; for Exclusive groups this is priority
}

// Expression is a step's ordered list of predecessor groups. An empty
// expression marks a root step.
type Expression []Group

// String renders the expression back into hierarchy-file syntax.
func (e Expression) String() string {
	parts := make([]string, 0, len(e))
	for _, g := range e {
		tokens := make([]string, len(g.Members))
		for i, m := range g.Members {
			tokens[i] = m.String()
		}
		parts = append(parts, strings.Join(tokens, g.Kind.connector()))
	}
	return strings.Join(parts, "+")
}

// Candidates returns every member of every group, in declared order.
func (e Expression) Candidates() []Ref {
	var out []Ref
	for _, g := range e {
		out = append(out, g.Members...)
	}
	return out
}

// Step is a single pipeline stage.
type Step struct {
	ID   int
	Name string
	Expr Expression
}

// Label is the display label used for the step's vertex.
func (s *Step) Label() string {
	return strconv.Itoa(s.ID) + ":" + s.Name
}

// IsRoot reports whether the step declares no predecessors at all.
func (s *Step) IsRoot() bool { return len(s.Expr) == 0 }

// Hierarchy is the parsed representation of a hierarchy file. It is never
// mutated after Parse returns, so it may be shared between goroutines.
type Hierarchy struct {
	Steps   map[int]*Step
	Order   []int // step ids in file order
	Sources Vocabulary
}

// Step returns the step with the given id, or nil.
func (h *Hierarchy) Step(id int) *Step {
	return h.Steps[id]
}

// IDs returns all step ids in ascending order.
func (h *Hierarchy) IDs() []int {
	ids := make([]int, 0, len(h.Steps))
	for id := range h.Steps {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MaxStep returns the highest declared step id.
func (h *Hierarchy) MaxStep() int {
	max := 0
	for id := range h.Steps {
		if id > max {
			max = id
		}
	}
	return max
}

// Successors returns the ids of steps naming id anywhere in their expression,
// ascending.
func (h *Hierarchy) Successors(id int) []int {
	var out []int
	for _, sid := range h.IDs() {
		for _, c := range h.Steps[sid].Expr.Candidates() {
			if !c.IsData() && c.Step == id {
				out = append(out, sid)
				break
			}
		}
	}
	return out
}

// Vocabulary is the set of external-data tokens a hierarchy may reference,
// in display order.
type Vocabulary []string

// DefaultVocabulary holds the sequencing inputs known to the sample pipelines.
var DefaultVocabulary = Vocabulary{"BAM", "FASTQ"}

// Contains reports whether token is declared.
func (v Vocabulary) Contains(token string) bool {
	return v.index(token) >= 0
}

func (v Vocabulary) index(token string) int {
	for i, t := range v {
		if t == token {
			return i
		}
	}
	return -1
}
