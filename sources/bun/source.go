// Package tablebun serves table records from Bun models.
package tablebun

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-tables/tables"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Scope narrows the select query of a Source, e.g. with a Where clause.
type Scope func(*bun.SelectQuery) *bun.SelectQuery

// Source reads table records from a Bun model. Each rendered page costs
// two queries: one COUNT and one windowed SELECT.
type Source struct {
	db     bun.IDB
	typ    reflect.Type
	table  *schema.Table
	scopes []Scope
}

// NewSource creates a source for model, a pointer to a Bun model struct
// such as (*Country)(nil).
func NewSource(db bun.IDB, model any, scopes ...Scope) (*Source, error) {
	if db == nil {
		return nil, tables.NewError(tables.KindConfiguration, "bun source requires a database", nil)
	}
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, tables.NewError(tables.KindConfiguration, fmt.Sprintf("bun source requires a model struct, got %T", model), nil)
	}
	return &Source{
		db:     db,
		typ:    typ,
		table:  db.Dialect().Tables().Get(typ),
		scopes: scopes,
	}, nil
}

func (s *Source) query(model any) *bun.SelectQuery {
	q := s.db.NewSelect().Model(model)
	for _, scope := range s.scopes {
		if scope != nil {
			q = scope(q)
		}
	}
	return q
}

// Count returns the number of records matching the scopes.
func (s *Source) Count(ctx context.Context) (int, error) {
	count, err := s.query(reflect.New(s.typ).Interface()).Count(ctx)
	if err != nil {
		return 0, tables.NewError(tables.KindInternal, "bun source count failed", err)
	}
	return count, nil
}

// Fetch selects one window of records as model pointers.
func (s *Source) Fetch(ctx context.Context, q tables.Query) ([]any, error) {
	dest := reflect.New(reflect.SliceOf(reflect.PointerTo(s.typ)))
	query := s.query(dest.Interface())

	for _, sort := range q.Sort {
		field, ok := s.field(sort.Field)
		if !ok {
			return nil, tables.NewError(tables.KindValidation, fmt.Sprintf("cannot order %s by %q", s.table.Name, sort.Field), nil)
		}
		direction := "ASC"
		if sort.Desc {
			direction = "DESC"
		}
		query = query.OrderExpr("?TableAlias.? "+direction, bun.Ident(field.Name))
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, tables.NewError(tables.KindInternal, "bun source select failed", err)
	}

	slice := dest.Elem()
	records := make([]any, slice.Len())
	for i := range records {
		records[i] = slice.Index(i).Interface()
	}
	return records, nil
}

// field finds the column a sort accessor names, by SQL name or Go name.
func (s *Source) field(accessor string) (*schema.Field, bool) {
	if field, ok := s.table.FieldMap[accessor]; ok {
		return field, true
	}
	folded := fold(accessor)
	for _, field := range s.table.Fields {
		if fold(field.Name) == folded || fold(field.GoName) == folded {
			return field, true
		}
	}
	return nil, false
}

func fold(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Fields describes the model columns in declaration order.
func (s *Source) Fields() []tables.Field {
	fields := make([]tables.Field, 0, len(s.table.Fields))
	for _, field := range s.table.Fields {
		fields = append(fields, tables.Field{
			Name:        field.Name,
			VerboseName: verboseName(field),
			Type:        columnType(field.IndirectType),
		})
	}
	return fields
}

// VerboseName names records after the model and table names.
func (s *Source) VerboseName() (string, string) {
	return strings.ReplaceAll(s.table.ModelName, "_", " "), strings.ReplaceAll(s.table.Name, "_", " ")
}

func verboseName(field *schema.Field) string {
	if field.IsPK && field.Name == "id" {
		return "ID"
	}
	return strings.ReplaceAll(field.Name, "_", " ")
}

var timeType = reflect.TypeOf(time.Time{})

func columnType(typ reflect.Type) string {
	if typ == timeType {
		return "datetime"
	}
	switch typ.Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	default:
		return "string"
	}
}
