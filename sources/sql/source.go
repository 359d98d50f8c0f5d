// Package tablesql serves table records from named SQL queries.
package tablesql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-tables/tables"
)

// Querier runs queries. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Source wraps a registered query as a subquery, adding COUNT, ORDER BY,
// LIMIT and OFFSET around it. Records are map[string]any keyed by column.
type Source struct {
	db      Querier
	def     Definition
	args    []any
	columns []string
}

// NewSource validates params and prepares the named query.
func NewSource(ctx context.Context, db Querier, reg *Registry, name string, params any) (*Source, error) {
	if db == nil {
		return nil, tables.NewError(tables.KindConfiguration, "sql source requires a database", nil)
	}
	if reg == nil {
		return nil, tables.NewError(tables.KindConfiguration, "query registry is required", nil)
	}
	def, ok := reg.Resolve(name)
	if !ok {
		return nil, tables.NewError(tables.KindNotFound, fmt.Sprintf("query %q not registered", name), nil)
	}

	if err := validateParams(def, params); err != nil {
		return nil, tables.NewError(tables.KindValidation, fmt.Sprintf("query %q params", name), err)
	}
	args, err := queryArgs(def, params)
	if err != nil {
		return nil, tables.NewError(tables.KindValidation, fmt.Sprintf("query %q arguments", name), err)
	}

	s := &Source{db: db, def: def, args: args, columns: def.Columns}
	if len(s.columns) == 0 {
		if s.columns, err = s.discoverColumns(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func validateParams(def Definition, params any) error {
	if def.Validate != nil {
		return def.Validate(params)
	}
	if validator, ok := params.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return nil
}

func queryArgs(def Definition, params any) ([]any, error) {
	if def.Args != nil {
		return def.Args(params)
	}
	if params == nil {
		return nil, nil
	}
	if argser, ok := params.(interface{ Args() []any }); ok {
		return argser.Args(), nil
	}
	if args, ok := params.([]any); ok {
		return args, nil
	}
	return nil, fmt.Errorf("cannot build arguments from %T", params)
}

func (s *Source) subquery() string {
	return "(" + s.def.Query + ") AS q"
}

func (s *Source) discoverColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.subquery()+" LIMIT 0", s.args...)
	if err != nil {
		return nil, tables.NewError(tables.KindInternal, fmt.Sprintf("query %q columns", s.def.Name), err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, tables.NewError(tables.KindInternal, fmt.Sprintf("query %q columns", s.def.Name), err)
	}
	return columns, nil
}

// Count returns the number of rows the query yields.
func (s *Source) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.subquery(), s.args...).Scan(&count); err != nil {
		return 0, tables.NewError(tables.KindInternal, fmt.Sprintf("query %q count", s.def.Name), err)
	}
	return count, nil
}

// Fetch runs one ordered window of the query.
func (s *Source) Fetch(ctx context.Context, q tables.Query) ([]any, error) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(s.subquery())

	for i, sort := range q.Sort {
		if !slices.Contains(s.columns, sort.Field) {
			return nil, tables.NewError(tables.KindValidation, fmt.Sprintf("query %q has no column %q", s.def.Name, sort.Field), nil)
		}
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdentifier(sort.Field))
		if sort.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	if q.Limit > 0 || q.Offset > 0 {
		limit := int64(math.MaxInt64)
		if q.Limit > 0 {
			limit = int64(q.Limit)
		}
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(limit, 10))
		if q.Offset > 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(q.Offset))
		}
	}

	rows, err := s.db.QueryContext(ctx, b.String(), s.args...)
	if err != nil {
		return nil, tables.NewError(tables.KindInternal, fmt.Sprintf("query %q fetch", s.def.Name), err)
	}
	defer rows.Close()
	return scanMaps(rows)
}

func scanMaps(rows *sql.Rows) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var records []any
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				record[column] = string(raw)
				continue
			}
			record[column] = values[i]
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Fields describes the result columns in query order.
func (s *Source) Fields() []tables.Field {
	fields := make([]tables.Field, len(s.columns))
	for i, column := range s.columns {
		fields[i] = tables.Field{Name: column}
	}
	return fields
}

// VerboseName returns the names from the definition, the query name when
// they are unset.
func (s *Source) VerboseName() (string, string) {
	singular, plural := s.def.VerboseName, s.def.VerboseNamePlural
	if singular == "" {
		singular = strings.ReplaceAll(s.def.Name, "_", " ")
	}
	if plural == "" {
		plural = singular
	}
	return singular, plural
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
