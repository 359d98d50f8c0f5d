package export

import (
	"context"
	"encoding/json"
	"io"
)

// JSONRenderer renders JSON output.
type JSONRenderer struct{}

// Render streams rows as a JSON array of objects, or as NDJSON when
// opts.JSON.Mode is JSONModeLines. Objects are keyed by column name.
func (r JSONRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	stats := RenderStats{}
	lines := opts.JSON.Mode == JSONModeLines

	toObject := func(row Row) (map[string]any, error) {
		obj := make(map[string]any, len(schema.Columns))
		for i, col := range schema.Columns {
			value, err := formatter.formatJSONValue(col, row[i])
			if err != nil {
				return nil, err
			}
			obj[col.Name] = value
		}
		return obj, nil
	}

	if lines {
		encoder := json.NewEncoder(cw)
		err := eachRow(ctx, schema, rows, func(row Row) error {
			obj, err := toObject(row)
			if err != nil {
				return err
			}
			if err := encoder.Encode(obj); err != nil {
				return err
			}
			stats.Rows++
			return nil
		})
		stats.Bytes = cw.count
		return stats, err
	}

	if _, err := cw.Write([]byte("[")); err != nil {
		return stats, err
	}
	err = eachRow(ctx, schema, rows, func(row Row) error {
		obj, err := toObject(row)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if stats.Rows > 0 {
			if _, err := cw.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := cw.Write(payload); err != nil {
			return err
		}
		stats.Rows++
		return nil
	})
	if err != nil {
		return stats, err
	}
	if _, err := cw.Write([]byte("]")); err != nil {
		return stats, err
	}

	stats.Bytes = cw.count
	return stats, nil
}
