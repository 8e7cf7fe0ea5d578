package io

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/flow"
)

type graphDoc struct {
	Filters *flow.Filters `json:"filters,omitempty"`
	Nodes   []nodeDoc     `json:"nodes"`
	Links   []linkDoc     `json:"links"`
}

type nodeDoc struct {
	Name  string    `json:"name"`
	Role  flow.Role `json:"role"`
	Label string    `json:"label,omitempty"`
}

type linkDoc struct {
	Source  int     `json:"source"`
	Target  int     `json:"target"`
	Value   float64 `json:"value"`
	Tooltip string  `json:"tooltip,omitempty"`
}

// Frame is one year of a choropleth map.
type Frame struct {
	Year     string                  `json:"year"`
	Fills    map[string]binner.Color `json:"fills"`
	Tooltips map[string]string       `json:"tooltips,omitempty"`
	Legend   binner.Legend           `json:"legend"`
	Unknown  []string                `json:"unknown"`
}

// WriteGraph encodes g, and the filters that produced it when non-nil.
func WriteGraph(w io.Writer, g *flow.Graph, f *flow.Filters) error {
	out := graphDoc{
		Filters: f,
		Nodes:   make([]nodeDoc, len(g.Nodes)),
		Links:   make([]linkDoc, len(g.Links)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = nodeDoc{Name: n.Name, Role: n.Role}
		if label := flow.Label(n.Name); label != n.Name {
			out.Nodes[i].Label = label
		}
	}
	for i, l := range g.Links {
		out.Links[i] = linkDoc{Source: l.Source, Target: l.Target, Value: l.Value, Tooltip: g.Tooltip(i)}
	}
	return encode(w, out)
}

// MarshalGraph returns the compact encoding of g, used for cache entries.
func MarshalGraph(g *flow.Graph) ([]byte, error) {
	return json.Marshal(g)
}

// WriteFrame encodes a map frame.
func WriteFrame(w io.Writer, fr Frame) error {
	if fr.Unknown == nil {
		fr.Unknown = []string{}
	}
	return encode(w, fr)
}

// MarshalFrame returns the compact encoding of a frame.
func MarshalFrame(fr Frame) ([]byte, error) {
	return json.Marshal(fr)
}

// ExportGraph writes g to a file at path.
func ExportGraph(g *flow.Graph, f *flow.Filters, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteGraph(file, g, f)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
