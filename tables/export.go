package tables

import (
	"context"
	"io"
	"strings"

	"github.com/goliatone/go-tables/export"
	"golang.org/x/net/html"
)

const exportBatchSize = 500

// ExportOptions control table exports. Headers are written unless
// OmitHeader is set. Paged limits the export to the current page.
type ExportOptions struct {
	OmitHeader     bool
	SheetName      string
	ExcludeColumns []string
	Delimiter      rune
	Timezone       string
	Paged          bool
}

// Schema returns the export schema: visible columns minus excluded ones,
// labelled with their plain header text.
func (t *Table) Schema(exclude ...string) (export.Schema, []*BoundColumn) {
	skip := toSet(exclude)
	columns := make([]*BoundColumn, 0, len(t.columns))
	schema := export.Schema{}
	for _, column := range t.Columns() {
		if skip[column.Name] {
			continue
		}
		columns = append(columns, column)
		schema.Columns = append(schema.Columns, export.Column{
			Name:   column.Name,
			Label:  column.HeaderText(),
			Type:   column.Column.Type,
			Format: export.ColumnFormat{Layout: column.Column.Layout},
		})
	}
	return schema, columns
}

// Export writes the table in format to w using the table renderers.
func (t *Table) Export(ctx context.Context, format export.Format, w io.Writer, opts ExportOptions) (export.RenderStats, error) {
	format = export.NormalizeFormat(format)
	renderer, ok := t.renderers.Resolve(format)
	if !ok {
		return export.RenderStats{}, NewError(KindNotImpl, "unsupported export format "+string(format), nil)
	}

	schema, columns := t.Schema(opts.ExcludeColumns...)
	renderOpts := export.RenderOptions{
		CSV:    export.CSVOptions{OmitHeader: opts.OmitHeader, Delimiter: opts.Delimiter},
		XLSX:   export.XLSXOptions{OmitHeader: opts.OmitHeader, SheetName: opts.SheetName},
		SQLite: export.SQLiteOptions{TableName: t.name},
		Format: export.FormatOptions{Timezone: opts.Timezone},
	}
	if format == export.FormatNDJSON {
		renderOpts.JSON.Mode = export.JSONModeLines
	}

	rows := &rowIterator{table: t, columns: columns}
	if opts.Paged && t.page != nil {
		rows.records = t.page.Items
		rows.offset = t.page.StartIndex() - 1
		rows.exhausted = true
	}

	stats, err := renderer.Render(ctx, schema, rows, w, renderOpts)
	if err != nil {
		t.logger.Errorf("tables: %s: export %s failed: %v", t.name, format, err)
		return stats, err
	}
	t.logger.Debugf("tables: %s: exported %d rows as %s", t.name, stats.Rows, format)
	return stats, nil
}

// AsCSV writes the table as CSV.
func (t *Table) AsCSV(ctx context.Context, w io.Writer, opts ExportOptions) error {
	_, err := t.Export(ctx, export.FormatCSV, w, opts)
	return err
}

// AsExcel writes the table as an XLSX workbook with a single sheet, named
// "Sheet 1" unless opts.SheetName is set.
func (t *Table) AsExcel(ctx context.Context, w io.Writer, opts ExportOptions) error {
	_, err := t.Export(ctx, export.FormatXLSX, w, opts)
	return err
}

// AsJSON writes the table as a JSON array of objects keyed by column name.
func (t *Table) AsJSON(ctx context.Context, w io.Writer, opts ExportOptions) error {
	_, err := t.Export(ctx, export.FormatJSON, w, opts)
	return err
}

// rowIterator feeds table rows to export renderers, fetching records in
// batches unless they were preloaded.
type rowIterator struct {
	table     *Table
	columns   []*BoundColumn
	records   []any
	offset    int
	pos       int
	exhausted bool
}

func (it *rowIterator) Next(ctx context.Context) (export.Row, error) {
	if it.pos >= len(it.records) {
		if it.exhausted {
			return nil, io.EOF
		}
		batch, err := it.table.data.Slice(ctx, it.offset+len(it.records), exportBatchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) < exportBatchSize {
			it.exhausted = true
		}
		it.offset += len(it.records)
		it.records, it.pos = batch, 0
		if len(batch) == 0 {
			return nil, io.EOF
		}
	}

	row := &BoundRow{Record: it.records[it.pos], Index: it.offset + it.pos, table: it.table}
	it.pos++

	out := make(export.Row, len(it.columns))
	for i, column := range it.columns {
		value, err := row.exportValue(column)
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

func (it *rowIterator) Close() error {
	it.records = nil
	return nil
}

// PlainText returns the text content of an HTML fragment.
func PlainText(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}
