package tables

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Query is the window and ordering requested from a Source. A zero Limit
// means all rows from Offset on.
type Query struct {
	Sort   []Sort
	Offset int
	Limit  int
}

// Source is a data backend that counts and fetches records on demand.
// Sort fields are column accessors; sources translate them to their own
// field names.
type Source interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, q Query) ([]any, error)
}

// Field describes a field a source exposes, used when a table has no
// declared columns.
type Field struct {
	Name        string
	VerboseName string
	Type        string
}

// FieldLister is implemented by sources that can describe their records.
type FieldLister interface {
	Fields() []Field
}

// VerboseNamer is implemented by sources that name their records, as in
// "country" and "countries".
type VerboseNamer interface {
	VerboseName() (singular, plural string)
}

// Data gives tables uniform access to in-memory lists and Sources.
type Data struct {
	list    []any
	sorted  []any
	source  Source
	sort    []Sort
	count   int
	counted bool
}

// NewData wraps data. Accepted values are a Source, a *Data, or any slice or
// array of records.
func NewData(data any) (*Data, error) {
	switch v := data.(type) {
	case nil:
		return &Data{list: []any{}}, nil
	case *Data:
		return v, nil
	case Source:
		return &Data{source: v}, nil
	case []any:
		return &Data{list: v}, nil
	}

	value := reflect.ValueOf(data)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		list := make([]any, value.Len())
		for i := range list {
			list[i] = value.Index(i).Interface()
		}
		return &Data{list: list}, nil
	default:
		return nil, NewError(KindValidation, "data must be a slice, an array or a Source, got "+value.Type().String(), nil)
	}
}

// Source returns the wrapped source, or nil for in-memory data.
func (d *Data) Source() Source {
	return d.source
}

// OrderBy sets the ordering applied to subsequent reads.
func (d *Data) OrderBy(sorts []Sort) {
	d.sort = append([]Sort(nil), sorts...)
	d.sorted = nil
}

// Ordering returns the current sort keys.
func (d *Data) Ordering() []Sort {
	return append([]Sort(nil), d.sort...)
}

// Len returns the number of records. Sources are counted once.
func (d *Data) Len(ctx context.Context) (int, error) {
	if d.source == nil {
		return len(d.list), nil
	}
	if d.counted {
		return d.count, nil
	}
	count, err := d.source.Count(ctx)
	if err != nil {
		return 0, err
	}
	d.count, d.counted = count, true
	return count, nil
}

// Slice returns records in [offset, offset+limit). A limit of zero or less
// returns everything from offset.
func (d *Data) Slice(ctx context.Context, offset, limit int) ([]any, error) {
	if offset < 0 {
		offset = 0
	}
	if d.source != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return d.source.Fetch(ctx, Query{Sort: d.Ordering(), Offset: offset, Limit: max(limit, 0)})
	}

	list := d.ordered()
	if offset >= len(list) {
		return []any{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

func (d *Data) ordered() []any {
	if len(d.sort) == 0 {
		return d.list
	}
	if d.sorted != nil {
		return d.sorted
	}

	type keyed struct {
		record any
		keys   []any
	}
	items := make([]keyed, len(d.list))
	for i, record := range d.list {
		keys := make([]any, len(d.sort))
		for j, s := range d.sort {
			keys[j], _ = Accessor(s.Field).Resolve(record)
		}
		items[i] = keyed{record: record, keys: keys}
	}
	sort.SliceStable(items, func(i, j int) bool {
		for k, s := range d.sort {
			c := compareValues(items[i].keys[k], items[j].keys[k])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	d.sorted = make([]any, len(items))
	for i, item := range items {
		d.sorted[i] = item.record
	}
	return d.sorted
}

// Fields describes the records: from the source when it is a FieldLister,
// otherwise from the first in-memory record.
func (d *Data) Fields() []Field {
	if lister, ok := d.source.(FieldLister); ok {
		return lister.Fields()
	}
	if len(d.list) == 0 {
		return nil
	}
	return fieldsOf(d.list[0])
}

// VerboseName returns the record names reported by the source, if any.
func (d *Data) VerboseName() (string, string, bool) {
	if namer, ok := d.source.(VerboseNamer); ok {
		singular, plural := namer.VerboseName()
		return singular, plural, true
	}
	return "", "", false
}

func fieldsOf(record any) []Field {
	value := reflect.ValueOf(record)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := make([]string, 0, value.Len())
		for _, key := range value.MapKeys() {
			keys = append(keys, key.String())
		}
		slices.Sort(keys)
		fields := make([]Field, len(keys))
		for i, key := range keys {
			fields[i] = Field{Name: key}
		}
		return fields
	case reflect.Struct:
		return structFields(value.Type())
	default:
		return nil
	}
}

func structFields(typ reflect.Type) []Field {
	fields := make([]Field, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := tagName(field)
		if name == "" {
			name = snakeCase(field.Name)
		}
		fields = append(fields, Field{Name: name})
	}
	return fields
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		lower := strings.ToLower(string(r))
		if i > 0 && lower != string(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && strings.ToLower(string(runes[i+1])) == string(runes[i+1])
			if strings.ToLower(string(prev)) == string(prev) || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteString(lower)
	}
	return b.String()
}
