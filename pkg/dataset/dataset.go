package dataset

import (
	"sort"
	"strconv"
)

// Dataset is an ordered collection of records sharing one schema.
type Dataset struct {
	Schema  Schema
	Header  []string
	Records []Record

	// Digest is a hex SHA-256 of the source bytes and the schema columns,
	// set by Load. It is empty for datasets assembled in memory.
	Digest string
}

// New assembles a dataset from records built with NewRecord.
func New(s Schema, records []Record) *Dataset {
	return &Dataset{Schema: s, Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Options returns the sorted unique non-empty values of a field. It is the
// source for a dropdown menu; the presentation layer adds the "all" entry.
func (d *Dataset) Options(f Field) []string {
	seen := make(map[string]struct{})
	for _, r := range d.Records {
		if v, ok := r.Get(f); ok && v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct parseable years in ascending order, bounded
// inclusively by min and max. An empty bound is open.
func (d *Dataset) Years(min, max string) []string {
	lo, hasLo := parseYear(min)
	hi, hasHi := parseYear(max)

	seen := make(map[int]string)
	for _, r := range d.Records {
		y, ok := parseYear(r.Year())
		if !ok {
			continue
		}
		if (hasLo && y < lo) || (hasHi && y > hi) {
			continue
		}
		if _, dup := seen[y]; !dup {
			seen[y] = r.Year()
		}
	}

	keys := make([]int, 0, len(seen))
	for y := range seen {
		keys = append(keys, y)
	}
	sort.Ints(keys)

	out := make([]string, len(keys))
	for i, y := range keys {
		out[i] = seen[y]
	}
	return out
}

// Filter returns a dataset holding the records for which keep returns true.
// Record storage is shared with d.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := &Dataset{Schema: d.Schema, Header: d.Header, Digest: d.Digest}
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	if d.Digest != "" && len(out.Records) != len(d.Records) {
		out.Digest = ""
	}
	return out
}

// DropZero removes records whose value is exactly zero. Records with a
// missing or unparseable value are kept.
func (d *Dataset) DropZero() *Dataset {
	out := d.Filter(func(r Record) bool {
		v, ok := r.Value()
		return !ok || v != 0
	})
	if d.Digest != "" && len(out.Records) != len(d.Records) {
		out.Digest = d.Digest + ":nz"
	}
	return out
}

func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}
