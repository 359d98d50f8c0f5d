package tablesql

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/goliatone/go-tables/tables"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	stmts := []string{
		`CREATE TABLE countries (name TEXT, capital TEXT, population INTEGER)`,
		`INSERT INTO countries VALUES ('Germany', 'Berlin', 83), ('France', NULL, 64), ('Netherlands', 'Amsterdam', NULL), ('Austria', NULL, 8)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

type minPopulation struct {
	Min int
}

func (p minPopulation) Validate() error {
	if p.Min < 0 {
		return errors.New("min must not be negative")
	}
	return nil
}

func (p minPopulation) Args() []any {
	return []any{p.Min}
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(Definition{
		Name:        "countries",
		Query:       "SELECT name, capital, population FROM countries WHERE COALESCE(population, 0) >= ?;",
		VerboseName: "country", VerboseNamePlural: "countries",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegistry_Register(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.Register(Definition{Name: "countries", Query: "SELECT 1"}); tables.KindFromError(err) != tables.KindValidation {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := reg.Register(Definition{Name: "empty", Query: " ; "}); tables.KindFromError(err) != tables.KindValidation {
		t.Fatalf("expected query required error, got %v", err)
	}
	if _, ok := reg.Resolve("missing"); ok {
		t.Fatalf("expected missing query")
	}
}

func TestSource_CountAndFetch(t *testing.T) {
	ctx := context.Background()
	source, err := NewSource(ctx, newTestDB(t), newRegistry(t), "countries", minPopulation{Min: 10})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	count, err := source.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", count, err)
	}

	records, err := source.Fetch(ctx, tables.Query{Sort: []tables.Sort{{Field: "population", Desc: true}}, Offset: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0].(map[string]any)
	if record["name"] != "France" || record["capital"] != nil {
		t.Fatalf("unexpected record %v", record)
	}

	if _, err := source.Fetch(ctx, tables.Query{Sort: []tables.Sort{{Field: "name; DROP TABLE countries"}}}); tables.KindFromError(err) != tables.KindValidation {
		t.Fatalf("expected unknown column error, got %v", err)
	}
}

func TestSource_InvalidParamsShortCircuits(t *testing.T) {
	_, err := NewSource(context.Background(), newTestDB(t), newRegistry(t), "countries", minPopulation{Min: -1})
	if tables.KindFromError(err) != tables.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = NewSource(context.Background(), newTestDB(t), newRegistry(t), "cities", nil)
	if tables.KindFromError(err) != tables.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSource_Table(t *testing.T) {
	ctx := context.Background()
	source, err := NewSource(ctx, newTestDB(t), newRegistry(t), "countries", minPopulation{})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	fields := source.Fields()
	if len(fields) != 3 || fields[2].Name != "population" {
		t.Fatalf("unexpected fields %+v", fields)
	}

	table, err := tables.New(tables.Spec{}, source, tables.WithOrderBy("name"))
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := table.Paginate(ctx, tables.PaginateOptions{Page: "2", PerPage: 3}); err != nil {
		t.Fatalf("paginate: %v", err)
	}
	rows, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row on the last page, got %d", len(rows))
	}
	cell, err := rows[0].Get("population")
	if err != nil || cell != "—" {
		t.Fatalf("expected default for null population, got %q (%v)", cell, err)
	}
	if table.VerboseName(1) != "country" {
		t.Fatalf("unexpected verbose name %q", table.VerboseName(1))
	}

	buf := &bytes.Buffer{}
	if err := table.AsCSV(ctx, buf, tables.ExportOptions{}); err != nil {
		t.Fatalf("as csv: %v", err)
	}
	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 5 || records[0][0] != "Name" || records[1][0] != "Austria" {
		t.Fatalf("unexpected csv %v", records)
	}
}
