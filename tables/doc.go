// Package tables renders row-like data as tables with sortable columns,
// pagination and exports.
//
// A Spec declares the columns; New binds it to data, which is either an
// in-memory slice of records (maps, structs or pointers) or a Source that
// counts and fetches records on demand. Values are read through dotted
// Accessor paths and shown with a CellRenderer.
//
//	spec := tables.Spec{
//		Name: "countries",
//		Columns: []tables.Column{
//			{Name: "name"},
//			{Name: "capital", Orderable: tables.Bool(false)},
//			{Name: "population", VerboseName: "population size"},
//			{Name: "calling_code", Accessor: "cc", VerboseName: "phone ext."},
//		},
//	}
//	table, err := tables.New(spec, countries, tables.WithOrderBy("name"))
//	err = tables.RequestConfig{Request: r}.Configure(ctx, table)
//
// Rendering to HTML lives in the adapters/template package; exports go
// through the renderers of the export package.
package tables
