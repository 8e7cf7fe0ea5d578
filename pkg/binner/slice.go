package binner

import (
	"strings"

	"github.com/flowatlas/flowatlas/pkg/dataset"
)

// YearSlice maps a statistics country name to its count for one year.
type YearSlice map[string]float64

// Slice scans every record and keeps those whose year equals year exactly.
// Country names are trimmed. Records without a numeric value are skipped, so
// their country reads as no data. A later record for the same country
// replaces an earlier one.
func Slice(records []dataset.Record, year string) YearSlice {
	s := make(YearSlice)
	for _, r := range records {
		if r.Year() != year {
			continue
		}
		v, ok := r.Value()
		if !ok {
			continue
		}
		s[strings.TrimSpace(r.Origin())] = v
	}
	return s
}

// Lookup returns the count for name, if present.
func (s YearSlice) Lookup(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}
