package binner

import "strings"

// AliasTable translates geometry region names to statistics country names.
type AliasTable map[string]string

var defaultAliases = AliasTable{
	"United States of America": "United States",
	"Dem. Rep. Congo":          "Congo",
	"Central African Rep.":     "Central African Republic",
	"S. Sudan":                 "South Sudan",
	"Somaliland":               "Somalia",
	"Côte d'Ivoire":            "Cote d'Ivoire",
	"Bosnia and Herz.":         "Bosnia and Herzegovina",
	"Macedonia":                "North Macedonia",
	"Timor-Leste":              "East Timor",
	"Dominican Rep.":           "Dominican Republic",
	"Solomon Is.":              "Solomon Islands",
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() AliasTable {
	return defaultAliases.Merge(nil)
}

// Resolve returns the alias of name, or name itself when none exists.
func (a AliasTable) Resolve(name string) string {
	if alias, ok := a[name]; ok && alias != "" {
		return alias
	}
	return name
}

// Merge returns a new table holding a overlaid with extra.
func (a AliasTable) Merge(extra map[string]string) AliasTable {
	out := make(AliasTable, len(a)+len(extra))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range extra {
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
