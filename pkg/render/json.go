package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

// document is the JSON-serialisable form of a resolved graph.
type document struct {
	Requested []int        `json:"requested"`
	Vertices  []jsonVertex `json:"vertices"`
	Edges     []jsonEdge   `json:"edges"`
	Gaps      []int        `json:"gaps"`
}

type jsonVertex struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Implied bool   `json:"implied,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// JSON marshals g as an indented JSON document of vertices and edges.
func JSON(h *flowchart.Hierarchy, g *flowchart.ResolvedGraph) ([]byte, error) {
	doc := document{
		Requested: g.Requested,
		Vertices:  []jsonVertex{},
		Edges:     []jsonEdge{},
		Gaps:      g.Gaps(h),
	}
	if doc.Gaps == nil {
		doc.Gaps = []int{}
	}
	for _, v := range g.Vertices() {
		jv := jsonVertex{ID: v.String(), Kind: "data", Label: v.Data}
		if !v.IsData() {
			jv.Kind = "step"
			jv.Label = h.Step(v.Step).Label()
			jv.Implied = g.IsImplied(v.Step)
		}
		doc.Vertices = append(doc.Vertices, jv)
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, jsonEdge{From: e.From.String(), To: flowchart.StepRef(e.To).String()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("graph marshal: %w", err)
	}
	return data, nil
}

// WriteFile writes data to path, creating nothing but the file itself.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("graph write: %w", err)
	}
	return nil
}
