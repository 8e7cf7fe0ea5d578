package flow

import (
	"strings"

	"github.com/flowatlas/flowatlas/pkg/dataset"
)

// DefaultMinValue is the pruning threshold used when no filter narrows the
// graph by country.
const DefaultMinValue = 1000

// Filters select the records that contribute links. An empty value or "all"
// (any case) leaves the dimension unconstrained.
type Filters struct {
	Year   string `json:"year,omitempty"`
	Origin string `json:"origin,omitempty"`
	Asylum string `json:"asylum,omitempty"`
}

// IsAll reports whether v is the unconstrained sentinel.
func IsAll(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

// Unconstrained reports whether neither origin nor asylum is filtered.
// Pruning only applies in that case.
func (f Filters) Unconstrained() bool {
	return IsAll(f.Origin) && IsAll(f.Asylum)
}

// Normalize maps every unconstrained value to "all" so equal selections
// compare and hash equally.
func (f Filters) Normalize() Filters {
	norm := func(v string) string {
		if IsAll(v) {
			return "all"
		}
		return v
	}
	return Filters{Year: norm(f.Year), Origin: norm(f.Origin), Asylum: norm(f.Asylum)}
}

// Match reports whether r passes the filters.
func (f Filters) Match(r dataset.Record) bool {
	if !IsAll(f.Year) && r.Year() != f.Year {
		return false
	}
	if !IsAll(f.Origin) && r.Origin() != f.Origin {
		return false
	}
	if !IsAll(f.Asylum) && r.Asylum() != f.Asylum {
		return false
	}
	return true
}

// Options tune graph construction.
type Options struct {
	// MinValue is the exclusive lower bound a record's value must exceed to
	// survive pruning. Nil selects DefaultMinValue; zero is a legal bound.
	MinValue *float64

	// DisablePruning keeps every matching record.
	DisablePruning bool
}

// Threshold returns v as an explicit Options.MinValue.
func Threshold(v float64) *float64 { return &v }

// Threshold returns the pruning bound in effect.
func (o Options) Threshold() float64 {
	if o.MinValue == nil {
		return DefaultMinValue
	}
	return *o.MinValue
}

// Build turns the records matching f into a flow graph. Each surviving
// record contributes exactly one link. Records with a missing or unparseable
// value contribute a link of value 0 unless pruning removes them.
func Build(records []dataset.Record, f Filters, opts Options) *Graph {
	prune := !opts.DisablePruning && f.Unconstrained()
	threshold := opts.Threshold()

	g := &Graph{Nodes: []Node{}, Links: []Link{}}
	origins := make(map[string]int)
	asylums := make(map[string]int)

	node := func(index map[string]int, name string, role Role) int {
		if i, ok := index[name]; ok {
			return i
		}
		i := len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{Name: name, Role: role})
		index[name] = i
		return i
	}

	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		v, ok := r.Value()
		if !ok {
			v = 0
		}
		if prune && !(v > threshold) {
			continue
		}
		src := node(origins, r.Origin(), RoleOrigin)
		dst := node(asylums, r.Asylum(), RoleAsylum)
		g.Links = append(g.Links, Link{Source: src, Target: dst, Value: v})
	}
	return g
}
