// Package render turns a resolved flowchart graph into output formats: DOT
// text for Graphviz, a plain-text summary and JSON.
package render

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

// GraphName is the name given to every generated digraph.
const GraphName = "flowchart"

// NoSourceMessage labels the placeholder diagram written when a strict render
// finds steps without any available input.
const NoSourceMessage = "Graph not created: some nodes don't have a source"

// DOT builds the Graphviz digraph for g. Step vertices are labelled
// "<id>:<name>" and data vertices with their token.
func DOT(h *flowchart.Hierarchy, g *flowchart.ResolvedGraph) (string, error) {
	dg, err := newDigraph("Flowchart")
	if err != nil {
		return "", err
	}

	for _, v := range g.Vertices() {
		label := v.Data
		if !v.IsData() {
			step := h.Step(v.Step)
			if step == nil {
				return "", flowchart.UnknownStepError{Step: v.Step}
			}
			label = step.Label()
		}
		attrs := map[string]string{
			"label": strconv.Quote(label),
			"shape": "rectangle",
		}
		if err := dg.AddNode(GraphName, NodeID(v), attrs); err != nil {
			return "", fmt.Errorf("add node %s: %w", v, err)
		}
	}

	for _, e := range g.Edges {
		attrs := map[string]string{"arrowhead": "normal"}
		if err := dg.AddEdge(NodeID(e.From), NodeID(flowchart.StepRef(e.To)), true, attrs); err != nil {
			return "", fmt.Errorf("add edge %s -> %d: %w", e.From, e.To, err)
		}
	}
	return dg.String(), nil
}

// ErrorDOT builds a single-node diagram carrying msg.
func ErrorDOT(msg string) (string, error) {
	dg, err := newDigraph("Flowchart")
	if err != nil {
		return "", err
	}
	attrs := map[string]string{
		"label": strconv.Quote(msg),
		"shape": "plaintext",
	}
	if err := dg.AddNode(GraphName, "0", attrs); err != nil {
		return "", fmt.Errorf("add error node: %w", err)
	}
	return dg.String(), nil
}

// NodeID returns the DOT identifier used for a vertex, quoting it when the
// token is not a bare DOT ID.
func NodeID(r flowchart.Ref) string {
	return dotQuote(r.String())
}

func newDigraph(comment string) (*gographviz.Graph, error) {
	dg := gographviz.NewGraph()
	if err := dg.SetName(GraphName); err != nil {
		return nil, fmt.Errorf("set graph name: %w", err)
	}
	if err := dg.SetDir(true); err != nil {
		return nil, fmt.Errorf("set graph direction: %w", err)
	}
	if err := dg.AddAttr(GraphName, "comment", strconv.Quote(comment)); err != nil {
		return nil, fmt.Errorf("set graph comment: %w", err)
	}
	return dg, nil
}

// dotQuote returns s unchanged when it is a valid bare DOT ID (alphanumeric
// and underscores not starting with a digit, or all digits), otherwise quoted.
func dotQuote(s string) string {
	if s == "" {
		return `""`
	}
	allDigits, bare := true, true
	for i := 0; i < len(s); i++ {
		ch := s[i]
		isDigit := ch >= '0' && ch <= '9'
		if !isDigit {
			allDigits = false
		}
		if !(isDigit || ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z') {
			bare = false
		}
	}
	if allDigits || (bare && !(s[0] >= '0' && s[0] <= '9')) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
