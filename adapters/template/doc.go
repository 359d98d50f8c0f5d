// Package tabletemplate renders tables as HTML with pongo2.
//
// Renderer owns a template set that resolves names against caller supplied
// file systems first and the embedded defaults second, so an application can
// override "tables/table.html" or add its own table templates.
//
// Creating a Renderer registers these template extensions with pongo2:
//
//	{% render_table table %}
//	{% render_table table "custom.html" %}
//	{% querystring "name"="Brad" sort=column.NextOrder without "page" %}
//	{% nospaceless %}...{% endnospaceless %}
//	{{ value|title }}
//
// pongo2 keeps tags and filters in process-wide registries, so these
// extensions apply to every pongo2 template set in the process once the
// first Renderer is built. In particular the built-in "title" filter is
// replaced by tables.Title, which leaves words that already contain an
// uppercase letter alone ("iPhone", "EU member").
//
// render_table accepts a *tables.Table or raw data. Raw data gets a table
// with automatic columns, configured from the "request" context variable.
// querystring needs an *http.Request under "request".
//
// Templates receive "table" (the *tables.Table), "view" (a *View with
// rendered headers, cells and pagination) and "request".
package tabletemplate
