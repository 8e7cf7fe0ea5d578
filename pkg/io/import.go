package io

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/flowatlas/flowatlas/pkg/flow"
)

// ReadGraph decodes a graph written by WriteGraph or MarshalGraph and
// validates it. The filters are returned when present.
func ReadGraph(r io.Reader) (*flow.Graph, *flow.Filters, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	g := &flow.Graph{
		Nodes: make([]flow.Node, len(doc.Nodes)),
		Links: make([]flow.Link, len(doc.Links)),
	}
	for i, n := range doc.Nodes {
		g.Nodes[i] = flow.Node{Name: n.Name, Role: n.Role}
	}
	for i, l := range doc.Links {
		g.Links[i] = flow.Link{Source: l.Source, Target: l.Target, Value: l.Value}
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	return g, doc.Filters, nil
}

// UnmarshalGraph decodes a cache entry written by MarshalGraph.
func UnmarshalGraph(data []byte) (*flow.Graph, error) {
	var g flow.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ReadFrame decodes a map frame.
func ReadFrame(r io.Reader) (Frame, error) {
	var fr Frame
	if err := json.NewDecoder(r).Decode(&fr); err != nil {
		return Frame{}, fmt.Errorf("decode: %w", err)
	}
	return fr, nil
}

// ImportGraph reads a graph file at path.
func ImportGraph(path string) (*flow.Graph, *flow.Filters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
