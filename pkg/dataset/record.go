package dataset

import (
	"math"
	"strconv"
	"strings"
)

// layout holds the column positions resolved from a header row.
// It is shared by every record read from the same header.
type layout struct {
	header []string
	index  map[string]int
	fields [4]int // indexed by Field, -1 when unmapped or absent
}

func newLayout(header []string, s Schema) *layout {
	l := &layout{
		header: header,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		if _, dup := l.index[h]; !dup {
			l.index[h] = i
		}
	}
	for _, f := range []Field{FieldYear, FieldOrigin, FieldAsylum, FieldValue} {
		l.fields[f] = -1
		if col := s.Column(f); col != "" {
			if i, ok := l.index[col]; ok {
				l.fields[f] = i
			}
		}
	}
	return l
}

// Record is one row of a dataset. Records are immutable after loading.
type Record struct {
	layout *layout
	values []string
}

// NewRecord builds a standalone record from column values keyed by header
// name. It is intended for tests and for callers assembling records by hand.
func NewRecord(s Schema, fields map[string]string) Record {
	header := make([]string, 0, len(fields))
	values := make([]string, 0, len(fields))
	for k, v := range fields {
		header = append(header, k)
		values = append(values, strings.TrimSpace(v))
	}
	return Record{layout: newLayout(header, s), values: values}
}

func (r Record) at(i int) (string, bool) {
	if r.layout == nil || i < 0 || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Get returns the value of a logical field and whether the record has it.
func (r Record) Get(f Field) (string, bool) {
	if r.layout == nil || f < FieldYear || f > FieldValue {
		return "", false
	}
	return r.at(r.layout.fields[f])
}

// Field returns the value of an arbitrary column by header name.
func (r Record) Field(name string) (string, bool) {
	if r.layout == nil {
		return "", false
	}
	i, ok := r.layout.index[name]
	if !ok {
		return "", false
	}
	return r.at(i)
}

// Year returns the year string, or "" when the record has none.
func (r Record) Year() string {
	v, _ := r.Get(FieldYear)
	return v
}

// Origin returns the origin country, or "" when the record has none.
func (r Record) Origin() string {
	v, _ := r.Get(FieldOrigin)
	return v
}

// Asylum returns the asylum country, or "" when the record has none.
func (r Record) Asylum() string {
	v, _ := r.Get(FieldAsylum)
	return v
}

// Value parses the numeric count. It reports false when the field is
// missing, empty, or not a finite number.
func (r Record) Value() (float64, bool) {
	s, ok := r.Get(FieldValue)
	if !ok || s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
