package flowchart_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

const trimHierarchy = `BAM	1:sam_to_fastq
FASTQ,1	2:trim
2	3:align
`

func mustResolve(t *testing.T, h *flowchart.Hierarchy, requested []int, available ...string) *flowchart.ResolvedGraph {
	t.Helper()
	g, err := flowchart.Resolve(h, requested, available)
	if err != nil {
		t.Fatalf("Resolve(%v, %v): %v", requested, available, err)
	}
	return g
}

func edge(from flowchart.Ref, to int) flowchart.Edge {
	return flowchart.Edge{From: from, To: to}
}

// ─── Exclusive choice ─────────────────────────────────────────────────────────

func TestResolve_ExclusivePrefersFirstDeclared(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	g := mustResolve(t, h, []int{1, 2}, "BAM", "FASTQ")

	want := []flowchart.Edge{
		edge(flowchart.DataRef("BAM"), 1),
		edge(flowchart.DataRef("FASTQ"), 2),
	}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
}

func TestResolve_ExclusiveFallsBackToReachableStep(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	g := mustResolve(t, h, []int{2}, "BAM")

	want := []flowchart.Edge{
		edge(flowchart.DataRef("BAM"), 1),
		edge(flowchart.StepRef(1), 2),
	}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
	if !reflect.DeepEqual(g.Implied, []int{1}) {
		t.Errorf("implied = %v, want [1]", g.Implied)
	}
	if !reflect.DeepEqual(g.Steps, []int{1, 2}) {
		t.Errorf("steps = %v, want [1 2]", g.Steps)
	}
	if !reflect.DeepEqual(g.Data, []string{"BAM"}) {
		t.Errorf("data = %v, want [BAM]", g.Data)
	}
}

func TestResolve_RequestedMembershipDoesNotMakeAStepAvailable(t *testing.T) {
	// Step 1 is requested but BAM is absent, so step 2 must still use FASTQ.
	h := mustParse(t, "BAM\t1:a\n1,FASTQ\t2:b\n")
	g := mustResolve(t, h, []int{1, 2}, "FASTQ")

	if got := g.IncomingEdges(2); !reflect.DeepEqual(got, []flowchart.Edge{edge(flowchart.DataRef("FASTQ"), 2)}) {
		t.Errorf("incoming(2) = %v, want [FASTQ -> 2]", got)
	}
	if got := g.Gaps(h); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("gaps = %v, want [1]", got)
	}
}

// ─── Inclusive union ──────────────────────────────────────────────────────────

func TestResolve_InclusiveTakesEveryAvailableMember(t *testing.T) {
	h := mustParse(t, `BAM	5:a
FASTQ	6:b
BAM	8:c
5+6+8	9:d
`)
	g := mustResolve(t, h, []int{5, 6, 8, 9}, "BAM")

	want := []flowchart.Edge{
		edge(flowchart.StepRef(5), 9),
		edge(flowchart.StepRef(8), 9),
	}
	if got := g.IncomingEdges(9); !reflect.DeepEqual(got, want) {
		t.Errorf("incoming(9) = %v, want %v", got, want)
	}
	// Step 6 was asked for, so it stays visible as a gap.
	if got := g.Gaps(h); !reflect.DeepEqual(got, []int{6}) {
		t.Errorf("gaps = %v, want [6]", got)
	}
}

func TestResolve_MixedGroupsAreUnioned(t *testing.T) {
	h := mustParse(t, `FASTQ	1:a
BAM	2:b
FASTQ	3:c
BAM	4:d
1,2+3+4	5:e
`)
	g := mustResolve(t, h, []int{5}, "BAM")

	want := []flowchart.Ref{flowchart.StepRef(2), flowchart.StepRef(4)}
	if got := g.Preds[5]; !reflect.DeepEqual(got, want) {
		t.Errorf("preds(5) = %v, want %v", got, want)
	}
}

func TestResolve_DuplicateCandidateYieldsOneEdge(t *testing.T) {
	h := mustParse(t, "FASTQ\t1:a\n1+1,FASTQ\t2:b\n")
	g := mustResolve(t, h, []int{2}, "FASTQ")
	if got := g.IncomingEdges(2); len(got) != 1 {
		t.Errorf("incoming(2) = %v, want a single edge", got)
	}
}

// ─── Transitive inclusion and gaps ────────────────────────────────────────────

func TestResolve_PullsInUnrequestedAncestors(t *testing.T) {
	h := loadSample(t)
	g := mustResolve(t, h, []int{12}, "FASTQ")

	if want := []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}; !reflect.DeepEqual(g.Implied, want) {
		t.Errorf("implied = %v, want %v", g.Implied, want)
	}
	if len(g.Edges) != 13 {
		t.Errorf("edges = %d, want 13", len(g.Edges))
	}
	if !reflect.DeepEqual(g.Data, []string{"FASTQ"}) {
		t.Errorf("data = %v, want [FASTQ]", g.Data)
	}
	if gaps := g.Gaps(h); len(gaps) != 0 {
		t.Errorf("gaps = %v, want none", gaps)
	}
}

func TestResolve_UnsatisfiableStepIsRenderedDisconnected(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	g := mustResolve(t, h, []int{3})

	if !reflect.DeepEqual(g.Steps, []int{3}) {
		t.Errorf("steps = %v, want [3]", g.Steps)
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges = %v, want none", g.Edges)
	}
	if !reflect.DeepEqual(g.Gaps(h), []int{3}) {
		t.Errorf("gaps = %v, want [3]", g.Gaps(h))
	}
}

func TestResolve_RootStepIsAvailableWithoutData(t *testing.T) {
	h := mustParse(t, "1:fetch_reference\n1\t2:index\n")
	g := mustResolve(t, h, []int{2})

	if want := []flowchart.Edge{edge(flowchart.StepRef(1), 2)}; !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
	if gaps := g.Gaps(h); len(gaps) != 0 {
		t.Errorf("a root step is not a gap, got gaps %v", gaps)
	}
}

func TestResolve_DeduplicatesRequest(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	g := mustResolve(t, h, []int{2, 1, 2, 1}, "BAM", "FASTQ")
	if !reflect.DeepEqual(g.Requested, []int{1, 2}) {
		t.Errorf("requested = %v, want [1 2]", g.Requested)
	}
}

func TestResolve_IgnoresUnknownDataTokens(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	g := mustResolve(t, h, []int{2}, "SRA")
	if len(g.Edges) != 0 {
		t.Errorf("edges = %v, want none", g.Edges)
	}
}

func TestResolve_SparseLargeStepIDs(t *testing.T) {
	const big = 9000000000000000000
	h := mustParse(t, "FASTQ\t1:a\n1\t9000000000000000000:b\n")
	g := mustResolve(t, h, []int{big}, "FASTQ")

	want := []flowchart.Edge{
		edge(flowchart.DataRef("FASTQ"), 1),
		edge(flowchart.StepRef(1), big),
	}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
	if !reflect.DeepEqual(g.Steps, []int{1, big}) {
		t.Errorf("steps = %v, want [1 %d]", g.Steps, big)
	}
}

// ─── Errors ───────────────────────────────────────────────────────────────────

func TestResolve_UnknownStep(t *testing.T) {
	h := mustParse(t, trimHierarchy)
	_, err := flowchart.Resolve(h, []int{1, 99}, []string{"BAM"})
	var use flowchart.UnknownStepError
	if !errors.As(err, &use) {
		t.Fatalf("err = %v, want UnknownStepError", err)
	}
	if use.Step != 99 {
		t.Errorf("step = %d, want 99", use.Step)
	}
}

func TestResolve_Cycle(t *testing.T) {
	h := mustParse(t, "2\t1:a\n1\t2:b\n")
	_, err := flowchart.Resolve(h, []int{1}, nil)
	var cycle flowchart.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want CycleError", err)
	}
	if want := []int{1, 2, 1}; !reflect.DeepEqual(cycle.Path, want) {
		t.Errorf("path = %v, want %v", cycle.Path, want)
	}
}

func TestResolve_DanglingReferenceInHandBuiltHierarchy(t *testing.T) {
	h := &flowchart.Hierarchy{
		Steps: map[int]*flowchart.Step{
			1: {ID: 1, Name: "a", Expr: flowchart.Expression{{
				Kind:    flowchart.Exclusive,
				Members: []flowchart.Ref{flowchart.StepRef(4)},
			}}},
		},
		Order: []int{1},
	}
	_, err := flowchart.Resolve(h, []int{1}, nil)
	var use flowchart.UnknownStepError
	if !errors.As(err, &use) || use.Step != 4 {
		t.Fatalf("err = %v, want UnknownStepError for step 4", err)
	}
}

// ─── Purity ───────────────────────────────────────────────────────────────────

func TestResolve_Idempotent(t *testing.T) {
	h := loadSample(t)
	a := mustResolve(t, h, []int{3, 12}, "BAM")
	b := mustResolve(t, h, []int{3, 12}, "BAM")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("second resolve differs:\n%+v\n%+v", a, b)
	}
}

func TestResolve_ConcurrentCallsShareHierarchy(t *testing.T) {
	h := loadSample(t)
	want := mustResolve(t, h, h.IDs(), "BAM")

	var wg sync.WaitGroup
	results := make([]*flowchart.ResolvedGraph, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = flowchart.Resolve(h, h.IDs(), []string{"BAM"})
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if !reflect.DeepEqual(results[i], want) {
			t.Errorf("goroutine %d got a different graph", i)
		}
	}
}
