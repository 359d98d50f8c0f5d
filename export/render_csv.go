package export

import (
	"context"
	"encoding/csv"
	"io"
)

// CSVRenderer renders CSV output.
type CSVRenderer struct{}

// Render streams rows as CSV, preceded by a header line unless omitted.
func (r CSVRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	if opts.CSV.Delimiter != 0 {
		writer.Comma = opts.CSV.Delimiter
	}

	if !opts.CSV.OmitHeader {
		if err := writer.Write(schemaLabels(schema)); err != nil {
			return RenderStats{}, err
		}
	}

	stats := RenderStats{}
	err = eachRow(ctx, schema, rows, func(row Row) error {
		record := make([]string, len(row))
		for i, value := range row {
			formatted, err := formatter.formatTextValue(schema.Columns[i], value)
			if err != nil {
				return err
			}
			record[i] = formatted
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		stats.Rows++
		return nil
	})
	if err != nil {
		return stats, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}
