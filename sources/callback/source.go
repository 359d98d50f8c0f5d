// Package tablecallback builds table sources from plain functions, for
// backends such as remote APIs that have no query builder.
package tablecallback

import (
	"context"
	"fmt"

	"github.com/goliatone/go-tables/tables"
)

// CountFunc reports the number of records.
type CountFunc func(ctx context.Context) (int, error)

// FetchFunc returns the records in the query window, in query order.
type FetchFunc func(ctx context.Context, q tables.Query) ([]any, error)

// Source wraps callbacks as a tables.Source.
type Source struct {
	count  CountFunc
	fetch  FetchFunc
	fields []tables.Field
	// Sortable lists the accessors fetch can order by. Empty accepts any.
	sortable map[string]bool
}

// Option configures a Source.
type Option func(*Source)

// WithFields describes the records for tables without declared columns.
func WithFields(fields ...tables.Field) Option {
	return func(s *Source) {
		s.fields = append(s.fields, fields...)
	}
}

// WithSortable restricts ordering to the named accessors.
func WithSortable(accessors ...string) Option {
	return func(s *Source) {
		if s.sortable == nil {
			s.sortable = make(map[string]bool, len(accessors))
		}
		for _, accessor := range accessors {
			s.sortable[accessor] = true
		}
	}
}

// NewSource creates a callback-based Source.
func NewSource(count CountFunc, fetch FetchFunc, opts ...Option) (*Source, error) {
	if count == nil || fetch == nil {
		return nil, tables.NewError(tables.KindValidation, "callback source requires count and fetch functions", nil)
	}
	s := &Source{count: count, fetch: fetch}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Count delegates to the count callback.
func (s *Source) Count(ctx context.Context) (int, error) {
	n, err := s.count(ctx)
	if err != nil {
		return 0, tables.NewError(tables.KindInternal, "callback count failed", err)
	}
	if n < 0 {
		return 0, tables.NewError(tables.KindInternal, fmt.Sprintf("callback count returned %d", n), nil)
	}
	return n, nil
}

// Fetch validates the ordering, then delegates to the fetch callback. At
// most q.Limit records are returned.
func (s *Source) Fetch(ctx context.Context, q tables.Query) ([]any, error) {
	if len(s.sortable) > 0 {
		for _, sort := range q.Sort {
			if !s.sortable[sort.Field] {
				return nil, tables.NewError(tables.KindValidation, fmt.Sprintf("cannot order by %q", sort.Field), nil)
			}
		}
	}
	records, err := s.fetch(ctx, q)
	if err != nil {
		return nil, tables.NewError(tables.KindInternal, "callback fetch failed", err)
	}
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

func (s *Source) Fields() []tables.Field {
	return s.fields
}
