package export

import (
	"context"
	"fmt"
	"io"
)

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

type limitedWriter struct {
	w     io.Writer
	count int64
	limit int64
}

func newLimitedWriter(w io.Writer, limit int64) *limitedWriter {
	return &limitedWriter{w: w, limit: limit}
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.limit > 0 && lw.count+int64(len(p)) > lw.limit {
		return 0, NewError(KindValidation, "max bytes exceeded", nil)
	}
	n, err := lw.w.Write(p)
	lw.count += int64(n)
	return n, err
}

// eachRow drains rows, checking the context and the row width before each
// callback. The iterator is closed when done.
func eachRow(ctx context.Context, schema Schema, rows RowIterator, fn func(Row) error) error {
	defer func() {
		_ = rows.Close()
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := rows.Next(ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(row) != len(schema.Columns) {
			return NewError(KindValidation, "row length does not match schema", nil)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func schemaLabels(schema Schema) []string {
	labels := make([]string, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		labels = append(labels, columnLabel(col))
	}
	return labels
}

func columnLabel(col Column) string {
	if col.Label != "" {
		return col.Label
	}
	return col.Name
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// SliceIterator iterates over rows held in memory.
type SliceIterator struct {
	rows  []Row
	index int
}

// NewSliceIterator creates an iterator over rows.
func NewSliceIterator(rows []Row) *SliceIterator {
	return &SliceIterator{rows: rows}
}

// Next returns the next row or io.EOF.
func (it *SliceIterator) Next(ctx context.Context) (Row, error) {
	_ = ctx
	if it.index >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.index]
	it.index++
	return row, nil
}

// Close is a no-op.
func (it *SliceIterator) Close() error {
	return nil
}
