package tables

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func countrySpec() Spec {
	return Spec{
		Name: "countries",
		Columns: []Column{
			{Name: "name"},
			{Name: "capital", Orderable: Bool(false), VerboseName: "capital"},
			{Name: "population", VerboseName: "population size"},
			{Name: "currency", Hidden: true},
			{Name: "tld", Hidden: true, VerboseName: "domain"},
			{Name: "calling_code", Accessor: "cc", VerboseName: "phone ext."},
		},
	}
}

func memoryData() []map[string]any {
	return []map[string]any{
		{"name": "Germany", "capital": "Berlin", "population": 83, "currency": "Euro (€)", "tld": "de", "cc": 49},
		{"name": "France", "population": 64, "currency": "Euro (€)", "tld": "fr", "cc": 33},
		{"name": "Netherlands", "capital": "Amsterdam", "cc": "31"},
		{"name": "Austria", "cc": 43, "currency": "Euro (€)", "population": 8},
	}
}

func newCountryTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	table, err := New(countrySpec(), memoryData(), opts...)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func columnNames(columns []*BoundColumn) []string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name
	}
	return names
}

func rowNames(t *testing.T, table *Table) []string {
	t.Helper()
	rows, err := table.Rows(context.Background())
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		value, err := row.Value("name")
		if err != nil {
			t.Fatalf("value: %v", err)
		}
		names[i] = value.(string)
	}
	return names
}

func TestTable_ColumnHeaders(t *testing.T) {
	table := newCountryTable(t)

	var got []string
	for _, column := range table.Columns() {
		got = append(got, column.String()+"/"+column.Name)
	}
	want := []string{"Name/name", "Capital/capital", "Population Size/population", "Phone Ext./calling_code"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected headers %v, got %v", want, got)
	}
	if len(table.AllColumns()) != 6 {
		t.Fatalf("expected hidden columns in AllColumns, got %d", len(table.AllColumns()))
	}
}

func TestTable_RowValuesUseDefault(t *testing.T) {
	table := newCountryTable(t)
	rows, err := table.Rows(context.Background())
	if err != nil {
		t.Fatalf("rows: %v", err)
	}

	var got []string
	for _, row := range rows {
		cells, err := row.Cells()
		if err != nil {
			t.Fatalf("cells: %v", err)
		}
		for _, cell := range cells {
			got = append(got, string(cell))
		}
	}
	want := "Germany Berlin 83 49 France — 64 33 Netherlands Amsterdam — 31 Austria — 8 43"
	if strings.Join(got, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(got, " "))
	}

	value, err := rows[1].Value("capital")
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != DefaultValue {
		t.Fatalf("expected default for missing capital, got %v", value)
	}
}

func TestTable_CustomDefault(t *testing.T) {
	table := newCountryTable(t, WithDefault("---"))
	rows, err := table.Rows(context.Background())
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	cell, err := rows[1].Get("capital")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cell != "---" {
		t.Fatalf("expected custom default, got %q", cell)
	}
}

func TestTable_UnknownColumn(t *testing.T) {
	table := newCountryTable(t)
	rows, _ := table.Rows(context.Background())
	if _, err := rows[0].Get("missing"); KindFromError(err) != KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestTable_SetOrderBy(t *testing.T) {
	table := newCountryTable(t)

	table.SetOrderBy("-population")
	if got := rowNames(t, table); !reflect.DeepEqual(got, []string{"Germany", "France", "Austria", "Netherlands"}) {
		t.Fatalf("unexpected descending order: %v", got)
	}

	table.SetOrderBy("population")
	if got := rowNames(t, table); !reflect.DeepEqual(got, []string{"Netherlands", "Austria", "France", "Germany"}) {
		t.Fatalf("unexpected ascending order: %v", got)
	}

	table.SetOrderBy("capital,unknown,name")
	if got := table.OrderBy().String(); got != "name" {
		t.Fatalf("expected non-orderable and unknown aliases dropped, got %q", got)
	}
}

func TestTable_SetOrderBy_MixedTypesAndTies(t *testing.T) {
	spec := Spec{Columns: []Column{{Name: "name"}, {Name: "calling_code"}}}
	data := []map[string]any{
		{"name": "Germany", "calling_code": 49},
		{"name": "France", "calling_code": 33},
		{"name": "Netherlands", "calling_code": "31"},
		{"name": "Austria", "calling_code": 43},
		{"name": "A", "calling_code": 43},
		{"name": "Nowhere"},
	}
	table, err := New(spec, data)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	table.SetOrderBy("calling_code")
	want := []string{"Nowhere", "France", "Austria", "A", "Germany", "Netherlands"}
	if got := rowNames(t, table); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected nil, then numbers, then strings ascending: %v, got %v", want, got)
	}

	table.SetOrderBy("-calling_code")
	want = []string{"Netherlands", "Germany", "Austria", "A", "France", "Nowhere"}
	if got := rowNames(t, table); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected reversed ranks with the tie kept in input order: %v, got %v", want, got)
	}
}

func TestTable_OrderByColumnAccessors(t *testing.T) {
	spec := Spec{Columns: []Column{
		{Name: "name", OrderBy: []string{"last", "first"}},
	}}
	data := []map[string]any{
		{"first": "Ann", "last": "Smith", "name": "Ann Smith"},
		{"first": "Bob", "last": "Adams", "name": "Bob Adams"},
		{"first": "Al", "last": "Smith", "name": "Al Smith"},
	}
	table, err := New(spec, data, WithOrderBy("-name"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := rowNames(t, table)
	want := []string{"Ann Smith", "Al Smith", "Bob Adams"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBoundColumn_Attrs(t *testing.T) {
	table := newCountryTable(t, WithOrderBy("name"))

	name, _ := table.Column("name")
	if got := name.THAttrs(); got != `class="name orderable asc"` {
		t.Fatalf("unexpected th attrs: %s", got)
	}
	if got := name.NextOrder(); got != "-name" {
		t.Fatalf("expected next order -name, got %s", got)
	}
	capital, _ := table.Column("capital")
	if got := capital.THAttrs(); got != `class="capital"` {
		t.Fatalf("unexpected th attrs: %s", got)
	}
	if got := capital.TDAttrs(); got != `class="capital"` {
		t.Fatalf("unexpected td attrs: %s", got)
	}
	population, _ := table.Column("population")
	if got := population.NextOrder(); got != "population" {
		t.Fatalf("expected next order population, got %s", got)
	}
}

func TestTable_SequenceAndExclude(t *testing.T) {
	table := newCountryTable(t, WithSequence("calling_code", Wildcard))
	got := columnNames(table.Columns())
	want := []string{"calling_code", "name", "capital", "population"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	table = newCountryTable(t, WithExclude("name"))
	if _, ok := table.Column("name"); ok {
		t.Fatalf("expected excluded column to be dropped")
	}
}

func TestNew_RejectsInvalidSpecs(t *testing.T) {
	cases := map[string]func() (*Table, error){
		"partial sequence": func() (*Table, error) {
			return New(countrySpec(), memoryData(), WithSequence("name"))
		},
		"unknown sequence": func() (*Table, error) {
			return New(countrySpec(), memoryData(), WithSequence("nope", Wildcard))
		},
		"unknown exclude": func() (*Table, error) {
			return New(countrySpec(), memoryData(), WithExclude("nope"))
		},
		"duplicate column": func() (*Table, error) {
			return New(Spec{Columns: []Column{{Name: "a"}, {Name: "a"}}}, nil)
		},
		"unknown localize": func() (*Table, error) {
			return New(Spec{Columns: []Column{{Name: "a"}}, Localize: []string{"b"}}, nil)
		},
		"bad data": func() (*Table, error) {
			return New(countrySpec(), 42)
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNew_AutoColumnsFromStructs(t *testing.T) {
	type region struct {
		ID      int
		Name    string
		MayorID *int `json:"mayor"`
		secret  string
	}
	table, err := New(Spec{}, []region{{ID: 1, Name: "Mackay"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := columnNames(table.Columns())
	if !reflect.DeepEqual(got, []string{"id", "name", "mayor"}) {
		t.Fatalf("unexpected auto columns: %v", got)
	}
	rows, _ := table.Rows(context.Background())
	cell, err := rows[0].Get("mayor")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cell != "—" {
		t.Fatalf("expected default for nil pointer, got %q", cell)
	}
}

func TestTable_VerboseName(t *testing.T) {
	table := newCountryTable(t)
	if table.VerboseName(1) != "item" || table.VerboseName(4) != "items" {
		t.Fatalf("unexpected default verbose names")
	}
	table, _ = New(Spec{Columns: []Column{{Name: "a"}}, VerboseName: "country", VerboseNamePlural: "countries"}, nil)
	if table.VerboseName(2) != "countries" {
		t.Fatalf("unexpected plural: %s", table.VerboseName(2))
	}
}

func TestSafeHeaderAndCellKeepMarkup(t *testing.T) {
	spec := Spec{Columns: []Column{{Name: "name", VerboseName: "<b>foo</b> <i>bar</i>", SafeHeader: true}}}
	table, err := New(spec, []map[string]any{{"name": HTML("<b>foo</b> <i>bar</i>")}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	column, _ := table.Column("name")
	if column.Header() != "<b>foo</b> <i>bar</i>" {
		t.Fatalf("unexpected header: %s", column.Header())
	}
	if column.HeaderText() != "foo bar" {
		t.Fatalf("unexpected header text: %q", column.HeaderText())
	}
	rows, _ := table.Rows(context.Background())
	cell, _ := rows[0].Get("name")
	if cell != "<b>foo</b> <i>bar</i>" {
		t.Fatalf("unexpected cell: %s", cell)
	}
}

func TestColumnKinds(t *testing.T) {
	spec := Spec{Columns: []Column{
		URLColumn("www"),
		EmailColumn("email"),
		BooleanColumn("active"),
		LinkColumn("name", func(record any) string {
			return "/people/" + record.(map[string]any)["slug"].(string)
		}),
		CheckBoxColumn("id"),
	}}
	data := []map[string]any{{
		"www": "http://google.com", "email": "a@b.c", "active": true,
		"name": "Brad & Co", "slug": "brad", "id": 7,
	}}
	table, err := New(spec, data)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rows, _ := table.Rows(context.Background())
	row := rows[0]

	expect := map[string]HTML{
		"www":    `<a href="http://google.com">http://google.com</a>`,
		"email":  `<a href="mailto:a@b.c">a@b.c</a>`,
		"active": `<span class="true">✔</span>`,
		"name":   `<a href="/people/brad">Brad &amp; Co</a>`,
		"id":     `<input name="id" type="checkbox" value="7"/>`,
	}
	for name, want := range expect {
		got, err := row.Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("column %s: expected %s, got %s", name, want, got)
		}
	}

	value, err := row.ExportValue("www")
	if err != nil || value != "http://google.com" {
		t.Fatalf("expected raw url export, got %v (%v)", value, err)
	}
	value, _ = row.ExportValue("active")
	if value != true {
		t.Fatalf("expected bool export, got %v", value)
	}
	if id, _ := table.Column("id"); id.Orderable() {
		t.Fatalf("expected checkbox column not orderable")
	}
}

func TestTable_PaginateSilent(t *testing.T) {
	ctx := context.Background()
	table := newCountryTable(t)

	if err := table.Paginate(ctx, PaginateOptions{Page: "x", PerPage: 3}); !errors.Is(err, ErrPageNotAnInteger) {
		t.Fatalf("expected ErrPageNotAnInteger, got %v", err)
	}
	if err := table.Paginate(ctx, PaginateOptions{Page: "9", PerPage: 3}); !errors.Is(err, ErrEmptyPage) {
		t.Fatalf("expected ErrEmptyPage, got %v", err)
	}

	if err := table.Paginate(ctx, PaginateOptions{Page: "x", PerPage: 3, Silent: true}); err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if table.Page().Number != 1 {
		t.Fatalf("expected first page, got %d", table.Page().Number)
	}
	if err := table.Paginate(ctx, PaginateOptions{Page: "9", PerPage: 3, Silent: true}); err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if table.Page().Number != 2 || len(table.PageRows()) != 1 {
		t.Fatalf("expected last page with one row, got page %d with %d rows", table.Page().Number, len(table.PageRows()))
	}
	if got := rowNames(t, table); !reflect.DeepEqual(got, []string{"Austria"}) {
		t.Fatalf("unexpected page rows: %v", got)
	}
}

type countingSource struct {
	records []any
	counts  int
	fetches int
	last    Query
}

func (s *countingSource) Count(ctx context.Context) (int, error) {
	s.counts++
	return len(s.records), nil
}

func (s *countingSource) Fetch(ctx context.Context, q Query) ([]any, error) {
	s.fetches++
	s.last = q
	end := len(s.records)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return s.records[q.Offset:end], nil
}

func TestTable_SourceQueriesPerPage(t *testing.T) {
	records := make([]any, 0)
	for _, record := range memoryData() {
		records = append(records, record)
	}
	source := &countingSource{records: records}
	table, err := New(countrySpec(), source, WithOrderBy("-name"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := table.Paginate(context.Background(), PaginateOptions{Page: "2", PerPage: 1}); err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if source.counts != 1 || source.fetches != 1 {
		t.Fatalf("expected one count and one fetch, got %d and %d", source.counts, source.fetches)
	}
	if source.last.Offset != 1 || source.last.Limit != 1 {
		t.Fatalf("unexpected window: %+v", source.last)
	}
	if len(source.last.Sort) != 1 || source.last.Sort[0] != (Sort{Field: "name", Desc: true}) {
		t.Fatalf("unexpected sort: %+v", source.last.Sort)
	}
}
