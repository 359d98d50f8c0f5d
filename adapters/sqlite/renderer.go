package exportsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-tables/export"
	_ "modernc.org/sqlite"
)

const defaultTableName = "data"

// Renderer writes rows into a SQLite database file.
type Renderer struct {
	// TableName is used when the render options carry none.
	TableName string
}

// Register adds a Renderer to reg under export.FormatSQLite.
func Register(reg *export.RendererRegistry) error {
	return reg.Register(export.FormatSQLite, Renderer{})
}

// Render buffers rows into a temp SQLite database and streams it to w.
func (r Renderer) Render(ctx context.Context, schema export.Schema, rows export.RowIterator, w io.Writer, opts export.RenderOptions) (export.RenderStats, error) {
	defer func() {
		_ = rows.Close()
	}()
	if len(schema.Columns) == 0 {
		return export.RenderStats{}, export.NewError(export.KindValidation, "schema has no columns", nil)
	}

	location, err := loadLocation(opts.Format.Timezone)
	if err != nil {
		return export.RenderStats{}, err
	}

	tableName := strings.TrimSpace(opts.SQLite.TableName)
	if tableName == "" {
		tableName = strings.TrimSpace(r.TableName)
	}
	spec, err := buildTableSpec(schema, sanitizeIdentifier(tableName, defaultTableName))
	if err != nil {
		return export.RenderStats{}, err
	}

	tempFile, err := os.CreateTemp("", "go-tables-*.sqlite")
	if err != nil {
		return export.RenderStats{}, export.NewError(export.KindInternal, "sqlite temp file create failed", err)
	}
	path := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(path)
		return export.RenderStats{}, export.NewError(export.KindInternal, "sqlite temp file close failed", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return export.RenderStats{}, export.NewError(export.KindInternal, "sqlite open failed", err)
	}

	stats, err := writeRows(ctx, db, spec, rows, location)
	if err != nil {
		_ = db.Close()
		return stats, err
	}
	if err := db.Close(); err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite close failed", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite temp file open failed", err)
	}
	defer func() {
		_ = file.Close()
	}()

	n, err := io.Copy(w, file)
	stats.Bytes = n
	return stats, err
}

type tableSpec struct {
	columns   []export.Column
	createSQL string
	insertSQL string
}

func buildTableSpec(schema export.Schema, tableName string) (tableSpec, error) {
	seen := make(map[string]struct{}, len(schema.Columns))
	defs := make([]string, len(schema.Columns))
	names := make([]string, len(schema.Columns))
	marks := make([]string, len(schema.Columns))

	for i, col := range schema.Columns {
		name := strings.TrimSpace(col.Name)
		if name == "" {
			return tableSpec{}, export.NewError(export.KindValidation, "column name is required", nil)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return tableSpec{}, export.NewError(export.KindValidation, fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[key] = struct{}{}

		names[i] = quoteIdentifier(name)
		defs[i] = strings.TrimSpace(names[i] + " " + columnAffinity(col.Type))
		marks[i] = "?"
	}

	table := quoteIdentifier(tableName)
	return tableSpec{
		columns:   schema.Columns,
		createSQL: fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", ")),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", ")),
	}, nil
}

func writeRows(ctx context.Context, db *sql.DB, spec tableSpec, rows export.RowIterator, location *time.Location) (export.RenderStats, error) {
	stats := export.RenderStats{}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite begin transaction failed", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, spec.createSQL); err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite create table failed", err)
	}
	stmt, err := tx.PrepareContext(ctx, spec.insertSQL)
	if err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite prepare insert failed", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		row, err := rows.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		if len(row) != len(spec.columns) {
			return stats, export.NewError(export.KindValidation, "row length does not match schema", nil)
		}

		values := make([]any, len(row))
		for i, value := range row {
			if values[i], err = sqliteValue(spec.columns[i], value, location); err != nil {
				return stats, err
			}
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return stats, export.NewError(export.KindInternal, "sqlite insert failed", err)
		}
		stats.Rows++
	}

	if err := tx.Commit(); err != nil {
		return stats, export.NewError(export.KindInternal, "sqlite commit failed", err)
	}
	return stats, nil
}

func columnAffinity(colType string) string {
	switch export.NormalizeColumnType(colType) {
	case "":
		return ""
	case "bool", "int":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteValue(col export.Column, value any, location *time.Location) (any, error) {
	if value == nil {
		return nil, nil
	}
	invalid := func(kind string) error {
		return export.NewError(export.KindValidation, fmt.Sprintf("invalid %s for column %q", kind, col.Name), nil)
	}

	colType := export.NormalizeColumnType(col.Type)
	switch colType {
	case "date", "datetime", "time":
		t, ok := export.CoerceTime(value)
		if !ok {
			return nil, invalid("time")
		}
		return formatTime(col, colType, t, location), nil
	case "bool":
		b, ok := export.CoerceBool(value)
		if !ok {
			return nil, invalid("bool")
		}
		return boolInt(b), nil
	case "int":
		n, ok := export.CoerceInt(value)
		if !ok {
			return nil, invalid("int")
		}
		return n, nil
	case "float":
		f, ok := export.CoerceFloat(value)
		if !ok {
			return nil, invalid("number")
		}
		return f, nil
	case "":
		switch v := value.(type) {
		case bool:
			return boolInt(v), nil
		case time.Time:
			return formatTime(col, "datetime", v, location), nil
		case int, int8, int16, int32, int64, uint, uint32, uint64:
			if n, ok := export.CoerceInt(v); ok {
				return n, nil
			}
		case float32, float64:
			f, _ := export.CoerceFloat(v)
			return f, nil
		case []byte:
			return v, nil
		}
	}
	return fmt.Sprint(value), nil
}

func formatTime(col export.Column, colType string, t time.Time, location *time.Location) string {
	if location != nil {
		t = t.In(location)
	}
	layout := strings.TrimSpace(col.Format.Layout)
	if layout == "" {
		layout = export.DefaultLayout(colType)
	}
	return t.Format(layout)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func loadLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil, nil
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, export.NewError(export.KindValidation, "invalid timezone", err)
	}
	return location, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sanitizeIdentifier(name, fallback string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		return fallback
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	return sanitized
}
