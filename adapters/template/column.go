package tabletemplate

import (
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-tables/tables"
)

// TemplateRenderer renders a cell from an inline template. The template sees
// "record", "value", "column" and "table". It runs for missing values too,
// so it can build cells that have no backing field.
type TemplateRenderer struct {
	tpl *pongo2.Template
}

// NewTemplateRenderer compiles source.
func NewTemplateRenderer(source string) (*TemplateRenderer, error) {
	if err := register(); err != nil {
		return nil, tables.NewError(tables.KindConfiguration, "register template tags", err)
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, tables.NewError(tables.KindConfiguration, "column template failed to parse", err)
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

// TemplateColumn returns a column rendered by source. It is not orderable.
func TemplateColumn(name, source string) (tables.Column, error) {
	renderer, err := NewTemplateRenderer(source)
	if err != nil {
		return tables.Column{}, err
	}
	return tables.Column{Name: name, Orderable: tables.Bool(false), Renderer: renderer}, nil
}

func (r *TemplateRenderer) RenderHTML(cell tables.Cell) (tables.HTML, error) {
	out, err := r.tpl.Execute(pongo2.Context{
		"record": cell.Record,
		"value":  cell.Value,
		"column": cell.Column,
		"table":  cell.Table,
	})
	if err != nil {
		return "", err
	}
	return tables.HTML(out), nil
}

// ExportValue exports the rendered text without markup.
func (r *TemplateRenderer) ExportValue(cell tables.Cell) (any, error) {
	out, err := r.RenderHTML(cell)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(tables.PlainText(string(out))), nil
}

func (r *TemplateRenderer) RendersEmpty() bool {
	return true
}
