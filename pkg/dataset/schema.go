package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// Field names a logical column of a refugee statistics record.
type Field int

const (
	FieldYear Field = iota
	FieldOrigin
	FieldAsylum
	FieldValue
)

var fieldNames = map[Field]string{
	FieldYear:   "year",
	FieldOrigin: "origin",
	FieldAsylum: "asylum",
	FieldValue:  "value",
}

func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField converts "year", "origin", "asylum" or "value" to a Field.
func ParseField(s string) (Field, error) {
	for f, name := range fieldNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown field %q (must be one of: year, origin, asylum, value)", s)
}

// Schema maps logical fields onto CSV header names.
// Asylum may be empty for datasets that only carry one country column.
type Schema struct {
	Year   string `toml:"year" json:"year"`
	Origin string `toml:"origin" json:"origin"`
	Asylum string `toml:"asylum" json:"asylum,omitempty"`
	Value  string `toml:"value" json:"value"`
}

// Built-in schemas for the datasets the visualizations were built against.
var (
	// SchemaUNHCR matches the UNHCR population export used by the Sankey diagram.
	SchemaUNHCR = Schema{
		Year:   "Year",
		Origin: "Country of origin",
		Asylum: "Country of asylum",
		Value:  "Refugees under UNHCR's mandate",
	}

	// SchemaOWID matches the Our World in Data export used by the map timelapse.
	SchemaOWID = Schema{
		Year:   "Year",
		Origin: "Entity",
		Value:  "Refugees by country of origin",
	}

	// SchemaApplications matches the asylum application export.
	SchemaApplications = Schema{
		Year:   "Year",
		Origin: "Country of origin",
		Asylum: "Country of asylum",
		Value:  "applied",
	}
)

var presets = map[string]Schema{
	"unhcr":        SchemaUNHCR,
	"owid":         SchemaOWID,
	"applications": SchemaApplications,
}

// Preset returns a built-in schema by name.
func Preset(name string) (Schema, error) {
	s, ok := presets[strings.ToLower(name)]
	if !ok {
		return Schema{}, errors.New(errors.ErrCodeInvalidSchema, "unknown schema preset %q (must be one of: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return s, nil
}

// PresetNames lists the built-in schema names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Column returns the header name mapped to f.
func (s Schema) Column(f Field) string {
	switch f {
	case FieldYear:
		return s.Year
	case FieldOrigin:
		return s.Origin
	case FieldAsylum:
		return s.Asylum
	case FieldValue:
		return s.Value
	}
	return ""
}

// HasAsylum reports whether the schema maps an asylum column.
func (s Schema) HasAsylum() bool {
	return s.Asylum != ""
}

// Validate checks that every required field is mapped.
func (s Schema) Validate() error {
	for _, f := range []Field{FieldYear, FieldOrigin, FieldValue} {
		if err := errors.ValidateFieldName(s.Column(f)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSchema, err, "%s column", f)
		}
	}
	if s.Asylum != "" {
		if err := errors.ValidateFieldName(s.Asylum); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSchema, err, "asylum column")
		}
	}
	return nil
}
