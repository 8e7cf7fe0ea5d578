package flow

import (
	"strconv"
	"strings"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// Role tells which side of the diagram a node belongs to.
type Role string

const (
	RoleOrigin Role = "origin"
	RoleAsylum Role = "asylum"
)

// Node is a country in one role. Identity is the (Name, Role) pair.
type Node struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Key returns a display key that is unique across both roles.
func (n Node) Key() string {
	return n.Name + " (" + string(n.Role) + ")"
}

// Link is a directed flow from an origin node to an asylum node.
// Source and Target index into Graph.Nodes.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// Graph is the bipartite flow graph consumed by the Sankey renderers.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

func (g *Graph) NodeCount() int { return len(g.Nodes) }
func (g *Graph) LinkCount() int { return len(g.Links) }

// Total returns the sum of all link values.
func (g *Graph) Total() float64 {
	var sum float64
	for _, l := range g.Links {
		sum += l.Value
	}
	return sum
}

// Validate checks that every link points from an origin node to an asylum
// node and that no (name, role) pair appears twice.
func (g *Graph) Validate() error {
	seen := make(map[Node]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Role != RoleOrigin && n.Role != RoleAsylum {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d (%s): unknown role %q", i, n.Name, n.Role)
		}
		if j, dup := seen[n]; dup {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d duplicates node %d (%s)", i, j, n.Key())
		}
		seen[n] = i
	}
	for i, l := range g.Links {
		if l.Source < 0 || l.Source >= len(g.Nodes) || l.Target < 0 || l.Target >= len(g.Nodes) {
			return errors.New(errors.ErrCodeInvalidFormat, "link %d: index out of range (%d -> %d, %d nodes)", i, l.Source, l.Target, len(g.Nodes))
		}
		if g.Nodes[l.Source].Role != RoleOrigin {
			return errors.New(errors.ErrCodeInvalidFormat, "link %d: source %s is not an origin", i, g.Nodes[l.Source].Key())
		}
		if g.Nodes[l.Target].Role != RoleAsylum {
			return errors.New(errors.ErrCodeInvalidFormat, "link %d: target %s is not an asylum country", i, g.Nodes[l.Target].Key())
		}
	}
	return nil
}

// MaxLabel is the longest node label shown in full.
const MaxLabel = 30

// Label shortens a node name for display, keeping MaxLabel-3 characters
// followed by "...".
func Label(name string) string {
	r := []rune(name)
	if len(r) <= MaxLabel {
		return name
	}
	return string(r[:MaxLabel-3]) + "..."
}

// Tooltip returns the hover text for link i, e.g. "Syria to Turkey : 3600000".
func (g *Graph) Tooltip(i int) string {
	l := g.Links[i]
	var b strings.Builder
	b.WriteString(g.Nodes[l.Source].Name)
	b.WriteString(" to ")
	b.WriteString(g.Nodes[l.Target].Name)
	b.WriteString(" : ")
	b.WriteString(FormatValue(l.Value))
	return b.String()
}

// FormatValue prints a count without exponent or trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
