package binner

import (
	"sort"
	"strconv"
)

// Binner colours region names from a year slice.
type Binner struct {
	Scale   Scale
	Aliases AliasTable
}

// New returns a Binner. A nil scale selects DefaultThreshold and a nil alias
// table selects DefaultAliases.
func New(s Scale, aliases AliasTable) *Binner {
	if s == nil {
		s = DefaultThreshold()
	}
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Binner{Scale: s, Aliases: aliases}
}

// Value resolves name through the alias table and looks it up in slice.
func (b *Binner) Value(name string, slice YearSlice) (float64, bool) {
	return slice.Lookup(b.Aliases.Resolve(name))
}

// ColorFor returns the fill for a region, or the no-data colour when the
// resolved name has no count in slice.
func (b *Binner) ColorFor(name string, slice YearSlice) Color {
	v, ok := b.Value(name, slice)
	if !ok {
		return NoData()
	}
	return ColorOf(b.Scale.Map(v))
}

// Fills colours every region and returns the sorted, de-duplicated names
// that had no data.
func (b *Binner) Fills(names []string, slice YearSlice) (map[string]Color, []string) {
	fills := make(map[string]Color, len(names))
	var unknown []string
	for _, n := range names {
		if _, done := fills[n]; done {
			continue
		}
		c := b.ColorFor(n, slice)
		fills[n] = c
		if c.NoData {
			unknown = append(unknown, n)
		}
	}
	sort.Strings(unknown)
	return fills, unknown
}

// Tooltip returns the hover text for a region, e.g. "Syria\nRefugees: 6500000".
func (b *Binner) Tooltip(name string, slice YearSlice) string {
	refugees := "Unknown"
	if v, ok := b.Value(name, slice); ok {
		refugees = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return name + "\nRefugees: " + refugees
}
