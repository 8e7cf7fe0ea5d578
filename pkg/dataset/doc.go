// Package dataset loads refugee and asylum statistics from CSV into typed
// records.
//
// The source datasets disagree on column names: the UNHCR export uses
// "Country of origin" and "Country of asylum", the Our World in Data export
// uses "Entity", and the count column is named differently in each. A
// [Schema] maps the four logical fields (year, origin, asylum, value) onto
// concrete header names. Column positions are resolved once, when the header
// is read, and every [Record] then answers through named accessors.
//
// A field that is absent from a record is reported through the boolean of
// [Record.Lookup] or [Record.Value] rather than as an error. Downstream
// components decide what "no data" means for them.
//
// # Usage
//
//	ds, err := dataset.Open(ctx, "refugees.csv", dataset.SchemaUNHCR, nil)
//	if err != nil {
//	    return err
//	}
//	years := ds.Years("2014", "2024")
//	origins := ds.Options(dataset.FieldOrigin)
package dataset
