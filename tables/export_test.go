package tables

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"slices"
	"testing"

	"github.com/goliatone/go-tables/export"
	"github.com/xuri/excelize/v2"
)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestTable_AsCSV(t *testing.T) {
	ctx := context.Background()
	table := newCountryTable(t)

	buf := &bytes.Buffer{}
	if err := table.AsCSV(ctx, buf, ExportOptions{OmitHeader: true}); err != nil {
		t.Fatalf("as csv: %v", err)
	}
	if records := readCSV(t, buf); len(records) != 4 {
		t.Fatalf("expected 4 records without header, got %d", len(records))
	}

	buf.Reset()
	if err := table.AsCSV(ctx, buf, ExportOptions{}); err != nil {
		t.Fatalf("as csv: %v", err)
	}
	records := readCSV(t, buf)
	header := []string{"Name", "Capital", "Population Size", "Phone Ext."}
	if !slices.Equal(records[0], header) {
		t.Fatalf("expected header %v, got %v", header, records[0])
	}
	if !slices.Equal(records[1], []string{"Germany", "Berlin", "83", "49"}) {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][1] != "" {
		t.Fatalf("expected missing value to export empty, got %q", records[2][1])
	}
}

func TestTable_AsCSVExcludeColumns(t *testing.T) {
	table := newCountryTable(t, WithExclude("name"))
	buf := &bytes.Buffer{}
	if err := table.AsCSV(context.Background(), buf, ExportOptions{ExcludeColumns: []string{"capital"}}); err != nil {
		t.Fatalf("as csv: %v", err)
	}
	records := readCSV(t, buf)
	if slices.Contains(records[0], "Name") || slices.Contains(records[0], "Capital") || slices.Contains(records[0], "Currency") {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if len(records[0]) != len(records[1]) {
		t.Fatalf("expected row width %d, got %d", len(records[0]), len(records[1]))
	}
}

func TestTable_AsExcel(t *testing.T) {
	ctx := context.Background()
	table := newCountryTable(t)

	cases := []struct {
		name     string
		opts     ExportOptions
		sheet    string
		wantRows int
	}{
		{name: "no header", opts: ExportOptions{OmitHeader: true}, sheet: "Sheet 1", wantRows: 4},
		{name: "header", opts: ExportOptions{}, sheet: "Sheet 1", wantRows: 5},
		{name: "sheet name", opts: ExportOptions{SheetName: "My Sheet"}, sheet: "My Sheet", wantRows: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := table.AsExcel(ctx, buf, tc.opts); err != nil {
				t.Fatalf("as excel: %v", err)
			}
			file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("open xlsx: %v", err)
			}
			rows, err := file.GetRows(tc.sheet)
			if err != nil {
				t.Fatalf("get rows: %v", err)
			}
			if len(rows) != tc.wantRows {
				t.Fatalf("expected %d rows, got %d", tc.wantRows, len(rows))
			}
			if !tc.opts.OmitHeader && rows[0][2] != "Population Size" {
				t.Fatalf("unexpected header: %v", rows[0])
			}
		})
	}
}

func TestTable_AsExcelNativeValues(t *testing.T) {
	table := newCountryTable(t)
	buf := &bytes.Buffer{}
	if err := table.AsExcel(context.Background(), buf, ExportOptions{}); err != nil {
		t.Fatalf("as excel: %v", err)
	}
	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	cellType, err := file.GetCellType("Sheet 1", "C2")
	if err != nil {
		t.Fatalf("cell type: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Fatalf("expected population exported as a number")
	}
}

func TestTable_AsJSON(t *testing.T) {
	table := newCountryTable(t, WithOrderBy("name"))
	buf := &bytes.Buffer{}
	if err := table.AsJSON(context.Background(), buf, ExportOptions{}); err != nil {
		t.Fatalf("as json: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(out))
	}
	if out[0]["name"] != "Austria" || out[0]["calling_code"] != float64(43) {
		t.Fatalf("unexpected first object: %v", out[0])
	}
	if out[0]["capital"] != nil {
		t.Fatalf("expected null capital, got %v", out[0]["capital"])
	}
}

func TestTable_ExportPagedAndUnsupported(t *testing.T) {
	ctx := context.Background()
	table := newCountryTable(t)
	if err := table.Paginate(ctx, PaginateOptions{Page: "2", PerPage: 3}); err != nil {
		t.Fatalf("paginate: %v", err)
	}

	buf := &bytes.Buffer{}
	stats, err := table.Export(ctx, export.FormatNDJSON, buf, ExportOptions{Paged: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if stats.Rows != 1 {
		t.Fatalf("expected one paged row, got %d", stats.Rows)
	}

	stats, err = table.Export(ctx, "jsonl", &bytes.Buffer{}, ExportOptions{})
	if err != nil || stats.Rows != 4 {
		t.Fatalf("expected all rows, got %d (%v)", stats.Rows, err)
	}

	_, err = table.Export(ctx, "pdf", &bytes.Buffer{}, ExportOptions{})
	if KindFromError(err) != KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestTable_ExportBatchesSource(t *testing.T) {
	records := make([]any, exportBatchSize+3)
	for i := range records {
		records[i] = map[string]any{"n": i}
	}
	source := &countingSource{records: records}
	table, err := New(Spec{Columns: []Column{{Name: "n", Type: "int"}}}, source)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	buf := &bytes.Buffer{}
	stats, err := table.Export(context.Background(), export.FormatCSV, buf, ExportOptions{OmitHeader: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if stats.Rows != int64(len(records)) {
		t.Fatalf("expected %d rows, got %d", len(records), stats.Rows)
	}
	if source.fetches != 2 {
		t.Fatalf("expected two batches, got %d", source.fetches)
	}
}
