package tables

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-tables/export"
)

// Column declares how one field is displayed, ordered and exported.
type Column struct {
	Name string
	// Accessor locates the value in a record. Defaults to Name.
	Accessor Accessor
	// VerboseName is the header text. Defaults to Name with underscores
	// replaced by spaces. Plain headers are passed through Title.
	VerboseName string
	// SafeHeader marks VerboseName as trusted markup.
	SafeHeader bool
	Hidden     bool
	// Orderable overrides the table setting when set.
	Orderable *bool
	// OrderBy lists the accessors used to sort by this column. Defaults to
	// the column accessor. A "-" prefix reverses that accessor.
	OrderBy []string
	// Default replaces missing values. Falls back to the table default.
	Default any
	// Localize overrides the table localization settings when set.
	Localize *bool
	Attrs    ColumnAttrs
	// Type and Layout drive export typing and time formatting.
	Type     string
	Layout   string
	Renderer CellRenderer
}

// Cell is the input to a CellRenderer.
type Cell struct {
	Value  any
	Record any
	Column *BoundColumn
	Table  *Table
}

// CellRenderer turns a cell value into markup for display and into a plain
// value for exports.
type CellRenderer interface {
	RenderHTML(cell Cell) (HTML, error)
	ExportValue(cell Cell) (any, error)
}

// EmptyValueRenderer is implemented by renderers that render missing values
// themselves instead of showing the column default.
type EmptyValueRenderer interface {
	RendersEmpty() bool
}

func rendersEmpty(r CellRenderer) bool {
	e, ok := r.(EmptyValueRenderer)
	return ok && e.RendersEmpty()
}

// TextRenderer is the default renderer: the value as escaped text, numbers
// localized when the column is.
type TextRenderer struct{}

func (TextRenderer) RenderHTML(cell Cell) (HTML, error) {
	if safe, ok := cell.Value.(HTML); ok {
		return safe, nil
	}
	return Escape(DisplayText(cell)), nil
}

func (TextRenderer) ExportValue(cell Cell) (any, error) {
	return exportValue(cell.Value), nil
}

// DisplayText formats a cell value as text, honoring the column layout and
// localization.
func DisplayText(cell Cell) string {
	value := cell.Value
	if cell.Column != nil && cell.Table != nil && cell.Column.localized() {
		settings := cell.Table.L10N()
		if text, ok := FormatNumber(value, settings.Locale, settings.UseThousandSeparator); ok {
			return text
		}
	}

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case HTML:
		return string(v)
	case time.Time:
		return v.Format(cellLayout(cell))
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(cellLayout(cell))
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(value)
}

func cellLayout(cell Cell) string {
	if cell.Column == nil {
		return time.RFC3339
	}
	if layout := strings.TrimSpace(cell.Column.Column.Layout); layout != "" {
		return layout
	}
	return export.DefaultLayout(cell.Column.Column.Type)
}

func exportValue(value any) any {
	if safe, ok := value.(HTML); ok {
		return string(safe)
	}
	return value
}

// LinkRenderer renders the value as an anchor. URL computes the target.
// Text, when set, replaces the value as link text.
type LinkRenderer struct {
	URL  func(cell Cell) (string, error)
	Text func(cell Cell) string
}

func (r LinkRenderer) RenderHTML(cell Cell) (HTML, error) {
	href := ""
	if r.URL != nil {
		var err error
		if href, err = r.URL(cell); err != nil {
			return "", err
		}
	}
	text := DisplayText(cell)
	if r.Text != nil {
		text = r.Text(cell)
	}
	return renderLink(cell, href, text), nil
}

func (r LinkRenderer) ExportValue(cell Cell) (any, error) {
	if r.Text != nil {
		return r.Text(cell), nil
	}
	return exportValue(cell.Value), nil
}

// URLRenderer renders values that are URLs as links to themselves.
type URLRenderer struct{}

func (URLRenderer) RenderHTML(cell Cell) (HTML, error) {
	text := DisplayText(cell)
	return renderLink(cell, text, text), nil
}

func (URLRenderer) ExportValue(cell Cell) (any, error) {
	return exportValue(cell.Value), nil
}

// EmailRenderer renders addresses as mailto links.
type EmailRenderer struct{}

func (EmailRenderer) RenderHTML(cell Cell) (HTML, error) {
	text := DisplayText(cell)
	return renderLink(cell, "mailto:"+text, text), nil
}

func (EmailRenderer) ExportValue(cell Cell) (any, error) {
	return exportValue(cell.Value), nil
}

func renderLink(cell Cell, href, text string) HTML {
	attrs := Attrs{}
	if cell.Column != nil {
		attrs = attrs.Merge(cell.Column.Column.Attrs.A)
	}
	attrs["href"] = href
	return HTML("<a " + string(attrs.HTML()) + ">") + Escape(text) + "</a>"
}

// BooleanRenderer shows a glyph for truthy and falsy values. Exports carry
// the boolean.
type BooleanRenderer struct {
	Yes string
	No  string
}

func (r BooleanRenderer) RenderHTML(cell Cell) (HTML, error) {
	yes, no := r.Yes, r.No
	if yes == "" {
		yes = "✔"
	}
	if no == "" {
		no = "✘"
	}
	value := truthy(cell.Value)
	text, class := no, "false"
	if value {
		text, class = yes, "true"
	}
	return HTML(`<span class="`+class+`">`) + Escape(text) + "</span>", nil
}

func (BooleanRenderer) ExportValue(cell Cell) (any, error) {
	return truthy(cell.Value), nil
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	if b, ok := export.CoerceBool(value); ok {
		return b
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

// DateTimeRenderer formats times with Layout, falling back to the column
// layout. Exports carry the time value.
type DateTimeRenderer struct {
	Layout string
}

func (r DateTimeRenderer) RenderHTML(cell Cell) (HTML, error) {
	t, ok := export.CoerceTime(cell.Value)
	if !ok {
		return Escape(DisplayText(cell)), nil
	}
	layout := r.Layout
	if layout == "" {
		layout = cellLayout(cell)
	}
	return Escape(t.Format(layout)), nil
}

func (DateTimeRenderer) ExportValue(cell Cell) (any, error) {
	if t, ok := export.CoerceTime(cell.Value); ok {
		return t, nil
	}
	return exportValue(cell.Value), nil
}

// CheckBoxRenderer renders an input element named after the column with the
// value as its value.
type CheckBoxRenderer struct {
	Checked func(cell Cell) bool
}

func (r CheckBoxRenderer) RenderHTML(cell Cell) (HTML, error) {
	attrs := Attrs{"type": "checkbox", "value": DisplayText(cell)}
	if cell.Column != nil {
		attrs["name"] = cell.Column.Name
		attrs = attrs.Merge(cell.Column.Column.Attrs.Input)
	}
	if r.Checked != nil && r.Checked(cell) {
		attrs["checked"] = "checked"
	}
	return HTML("<input " + string(attrs.HTML()) + "/>"), nil
}

func (CheckBoxRenderer) ExportValue(cell Cell) (any, error) {
	return exportValue(cell.Value), nil
}

// LinkColumn builds a column that links each cell to url(record).
func LinkColumn(name string, url func(record any) string) Column {
	return Column{Name: name, Renderer: LinkRenderer{URL: func(cell Cell) (string, error) {
		return url(cell.Record), nil
	}}}
}

// URLColumn builds a column whose values are URLs.
func URLColumn(name string) Column {
	return Column{Name: name, Type: "url", Renderer: URLRenderer{}}
}

// EmailColumn builds a column whose values are e-mail addresses.
func EmailColumn(name string) Column {
	return Column{Name: name, Type: "email", Renderer: EmailRenderer{}}
}

// BooleanColumn builds a column rendering check and cross glyphs.
func BooleanColumn(name string) Column {
	return Column{Name: name, Type: "bool", Renderer: BooleanRenderer{}}
}

// DateTimeColumn builds a column formatting times with layout.
func DateTimeColumn(name, layout string) Column {
	return Column{Name: name, Type: "datetime", Layout: layout, Renderer: DateTimeRenderer{Layout: layout}}
}

// CheckBoxColumn builds a non-orderable column of checkboxes.
func CheckBoxColumn(name string) Column {
	return Column{Name: name, Orderable: Bool(false), Renderer: CheckBoxRenderer{}}
}
