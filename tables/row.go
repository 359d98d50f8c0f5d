package tables

import (
	"errors"
	"fmt"
	"reflect"
)

// BoundRow exposes one record through the table columns.
type BoundRow struct {
	Record any
	Index  int
	table  *Table
}

// RowItem pairs a visible column with its rendered cell.
type RowItem struct {
	Column *BoundColumn
	Cell   HTML
}

// Value returns the raw value of the named column. Missing, nil and empty
// string values are replaced by the column default.
func (r *BoundRow) Value(name string) (any, error) {
	column, ok := r.table.Column(name)
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("unknown column %q", name), nil)
	}
	value, missing, err := r.resolve(column)
	if err != nil {
		return nil, err
	}
	if missing {
		return column.Default(), nil
	}
	return value, nil
}

func (r *BoundRow) resolve(column *BoundColumn) (any, bool, error) {
	value, err := column.Accessor().Resolve(r.Record)
	if err != nil {
		if errors.Is(err, ErrMissingValue) {
			return nil, true, nil
		}
		return nil, false, err
	}
	value = indirect(value)
	if isEmpty(value) {
		return nil, true, nil
	}
	return value, false, nil
}

// indirect dereferences pointers to non-struct values so they display as
// the value they point to. Nil pointers become nil.
func indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			break
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case HTML:
		return v == ""
	}
	return false
}

// Get returns the rendered markup for the named column. Missing values show
// the default without calling the renderer.
func (r *BoundRow) Get(name string) (HTML, error) {
	column, ok := r.table.Column(name)
	if !ok {
		return "", NewError(KindNotFound, fmt.Sprintf("unknown column %q", name), nil)
	}
	return r.render(column)
}

func (r *BoundRow) render(column *BoundColumn) (HTML, error) {
	value, missing, err := r.resolve(column)
	if err != nil {
		return "", err
	}
	if missing && !rendersEmpty(column.Renderer()) {
		return defaultHTML(column.Default()), nil
	}
	out, err := column.Renderer().RenderHTML(r.cell(column, value))
	if err != nil {
		return "", NewError(KindInternal, fmt.Sprintf("render column %q", column.Name), err)
	}
	return out, nil
}

// ExportValue returns the plain value of the named column for exports.
// Missing values export as nil.
func (r *BoundRow) ExportValue(name string) (any, error) {
	column, ok := r.table.Column(name)
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("unknown column %q", name), nil)
	}
	return r.exportValue(column)
}

func (r *BoundRow) exportValue(column *BoundColumn) (any, error) {
	value, missing, err := r.resolve(column)
	if err != nil || (missing && !rendersEmpty(column.Renderer())) {
		return nil, err
	}
	out, err := column.Renderer().ExportValue(r.cell(column, value))
	if err != nil {
		return nil, NewError(KindInternal, fmt.Sprintf("export column %q", column.Name), err)
	}
	return out, nil
}

func (r *BoundRow) cell(column *BoundColumn, value any) Cell {
	return Cell{Value: value, Record: r.Record, Column: column, Table: r.table}
}

// Items returns the rendered cells of the visible columns in order.
func (r *BoundRow) Items() ([]RowItem, error) {
	columns := r.table.Columns()
	items := make([]RowItem, 0, len(columns))
	for _, column := range columns {
		cell, err := r.render(column)
		if err != nil {
			return nil, err
		}
		items = append(items, RowItem{Column: column, Cell: cell})
	}
	return items, nil
}

// Cells returns the rendered cells of the visible columns in order.
func (r *BoundRow) Cells() ([]HTML, error) {
	items, err := r.Items()
	if err != nil {
		return nil, err
	}
	cells := make([]HTML, len(items))
	for i, item := range items {
		cells[i] = item.Cell
	}
	return cells, nil
}

func defaultHTML(value any) HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case HTML:
		return v
	case string:
		return Escape(v)
	default:
		return Escape(fmt.Sprint(v))
	}
}
