package tablecallback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-tables/tables"
)

type planet struct {
	Name  string
	Moons int
}

var planets = []planet{{"Mercury", 0}, {"Venus", 0}, {"Earth", 1}, {"Mars", 2}, {"Jupiter", 95}}

func planetSource(t *testing.T, calls *[]tables.Query, opts ...Option) *Source {
	t.Helper()
	source, err := NewSource(
		func(context.Context) (int, error) { return len(planets), nil },
		func(_ context.Context, q tables.Query) ([]any, error) {
			*calls = append(*calls, q)
			out := make([]any, 0, len(planets))
			for _, p := range planets[min(q.Offset, len(planets)):] {
				out = append(out, p)
			}
			return out, nil
		},
		opts...,
	)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	return source
}

func TestNewSource_RequiresCallbacks(t *testing.T) {
	if _, err := NewSource(nil, nil); tables.KindFromError(err) != tables.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestSource_PaginatesThroughCallbacks(t *testing.T) {
	var calls []tables.Query
	source := planetSource(t, &calls, WithFields(tables.Field{Name: "name"}, tables.Field{Name: "moons"}))
	table, err := tables.New(tables.Spec{Name: "planets"}, source)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if n := len(table.Columns()); n != 2 {
		t.Fatalf("expected columns from fields, got %d", n)
	}
	if err := table.Paginate(context.Background(), tables.PaginateOptions{Page: "2", PerPage: 2}); err != nil {
		t.Fatalf("paginate: %v", err)
	}
	rows := table.PageRows()
	if len(rows) != 2 {
		t.Fatalf("expected the fetch window to be trimmed to 2 rows, got %d", len(rows))
	}
	name, err := rows[0].Get("name")
	if err != nil || name != "Earth" {
		t.Fatalf("expected Earth, got %v (%v)", name, err)
	}
	if len(calls) != 1 || calls[0].Offset != 2 || calls[0].Limit != 2 {
		t.Fatalf("unexpected fetch calls %+v", calls)
	}
}

func TestSource_Sortable(t *testing.T) {
	var calls []tables.Query
	source := planetSource(t, &calls, WithSortable("name"))

	if _, err := source.Fetch(context.Background(), tables.Query{Sort: []tables.Sort{{Field: "name", Desc: true}}}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	_, err := source.Fetch(context.Background(), tables.Query{Sort: []tables.Sort{{Field: "moons"}}})
	if tables.KindFromError(err) != tables.KindValidation || !strings.Contains(err.Error(), "moons") {
		t.Fatalf("expected a validation error for moons, got %v", err)
	}
}

func TestSource_WrapsCallbackErrors(t *testing.T) {
	boom := errors.New("boom")
	source, err := NewSource(
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context, tables.Query) ([]any, error) { return nil, boom },
	)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := source.Count(context.Background()); !errors.Is(err, boom) || tables.KindFromError(err) != tables.KindInternal {
		t.Fatalf("expected wrapped count error, got %v", err)
	}
	if _, err := source.Fetch(context.Background(), tables.Query{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}
