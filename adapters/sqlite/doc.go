// Package exportsqlite renders table exports as SQLite database files.
//
// The renderer is not part of export.DefaultRegistry; register it on the
// registry a table uses:
//
//	reg := export.DefaultRegistry()
//	_ = exportsqlite.Register(reg)
//	table, _ := tables.New(spec, data, tables.WithRenderers(reg))
//
// Rows land in one table named after the exported table (render option
// SQLite.TableName), "data" when unnamed. Typed columns get INTEGER, REAL or
// TEXT affinity; untyped columns keep the native type of each value.
package exportsqlite
