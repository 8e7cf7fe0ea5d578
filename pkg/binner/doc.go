// Package binner maps refugee counts to map colours.
//
// A [Binner] joins geometry region names to per-year statistics. Region names
// come from the world atlas and use Natural Earth spellings ("Dem. Rep.
// Congo"), while the statistics use UN spellings ("Congo"), so every name is
// first translated through an [AliasTable]. The resolved name is looked up in
// a [YearSlice]; a miss yields the no-data colour rather than an error.
//
// Two interchangeable [Scale] implementations turn a count into a colour:
//
//   - [Continuous] interpolates a linear or logarithmic domain into a
//     continuous palette and clamps values outside the domain.
//   - [Threshold] partitions the domain at ascending breakpoints into
//     discrete buckets. A value equal to a breakpoint belongs to the
//     bucket above it.
//
// All functions in this package are pure. A YearSlice is rebuilt from the
// full record set on every year change and never updated in place.
package binner
