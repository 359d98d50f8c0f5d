package export

import (
	"context"
	"io"
)

// Format is a table export output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// Column defines a column in the export schema.
type Column struct {
	Name   string
	Label  string
	Type   string
	Format ColumnFormat
}

// ColumnFormat provides renderer-specific formatting hints.
type ColumnFormat struct {
	Layout string
	Number string
	Excel  string
}

// Schema defines the exported columns, in output order.
type Schema struct {
	Columns []Column
}

// Row is a column-aligned record.
type Row []any

// RowIterator streams rows.
type RowIterator interface {
	Next(ctx context.Context) (Row, error)
	Close() error
}

// Renderer writes rows to the destination.
type Renderer interface {
	Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error)
}

// RenderStats capture renderer output.
type RenderStats struct {
	Rows  int64
	Bytes int64
}

// JSONMode configures JSON rendering.
type JSONMode string

const (
	JSONModeArray JSONMode = "array"
	JSONModeLines JSONMode = "ndjson"
)

// CSVOptions configures CSV output.
type CSVOptions struct {
	OmitHeader bool
	Delimiter  rune
}

// JSONOptions configures JSON output.
type JSONOptions struct {
	Mode JSONMode
}

// XLSXOptions configures XLSX output.
type XLSXOptions struct {
	OmitHeader bool
	SheetName  string
	MaxRows    int
	MaxBytes   int64
}

// SQLiteOptions configures SQLite output.
type SQLiteOptions struct {
	TableName string
}

// FormatOptions configures timezone handling for time values.
type FormatOptions struct {
	Timezone string
}

// RenderOptions configures renderer behavior.
type RenderOptions struct {
	CSV    CSVOptions
	JSON   JSONOptions
	XLSX   XLSXOptions
	SQLite SQLiteOptions
	Format FormatOptions
}
