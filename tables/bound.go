package tables

import "strings"

// BoundColumn is a Column attached to a Table.
type BoundColumn struct {
	Column Column
	Name   string
	table  *Table
}

// Accessor returns the path used to read values from records.
func (c *BoundColumn) Accessor() Accessor {
	if c.Column.Accessor != "" {
		return c.Column.Accessor
	}
	return Accessor(c.Name)
}

// VerboseName returns the declared verbose name or one derived from Name.
func (c *BoundColumn) VerboseName() string {
	if c.Column.VerboseName != "" {
		return c.Column.VerboseName
	}
	return strings.ReplaceAll(c.Name, "_", " ")
}

// Header returns the header markup. Safe headers are returned as declared;
// plain ones are title-cased and escaped.
func (c *BoundColumn) Header() HTML {
	if c.Column.SafeHeader {
		return HTML(c.Column.VerboseName)
	}
	return Escape(Title(c.VerboseName()))
}

// HeaderText returns the header as plain text, with any markup stripped.
func (c *BoundColumn) HeaderText() string {
	if c.Column.SafeHeader {
		return PlainText(c.Column.VerboseName)
	}
	return Title(c.VerboseName())
}

func (c *BoundColumn) String() string {
	return c.HeaderText()
}

func (c *BoundColumn) Visible() bool {
	return !c.Column.Hidden
}

// Orderable reports whether the column can be sorted. The column setting
// wins over the table setting.
func (c *BoundColumn) Orderable() bool {
	if c.Column.Orderable != nil {
		return *c.Column.Orderable
	}
	return c.table.orderable
}

// OrderBy returns the accessors used to sort by this column, ascending.
func (c *BoundColumn) OrderBy() OrderByTuple {
	if len(c.Column.OrderBy) > 0 {
		return ParseOrderBy(c.Column.OrderBy...)
	}
	return OrderByTuple{OrderBy(c.Accessor())}
}

// OrderByAlias returns the alias of this column in the table ordering, or
// the ascending alias when the table is not ordered by it.
func (c *BoundColumn) OrderByAlias() OrderBy {
	if alias, ok := c.table.orderBy.Get(c.Name); ok {
		return alias
	}
	return OrderBy(c.Name)
}

// IsOrdered reports whether the table is currently ordered by this column.
func (c *BoundColumn) IsOrdered() bool {
	return c.table.orderBy.Contains(c.Name)
}

func (c *BoundColumn) IsAscending() bool {
	return c.IsOrdered() && c.OrderByAlias().IsAscending()
}

func (c *BoundColumn) IsDescending() bool {
	return c.IsOrdered() && c.OrderByAlias().IsDescending()
}

// NextOrder returns the alias a header link should request: the opposite
// direction when ordered, ascending otherwise.
func (c *BoundColumn) NextOrder() string {
	if c.IsOrdered() {
		return string(c.OrderByAlias().Opposite())
	}
	return c.Name
}

// Default returns the value shown when the record has none.
func (c *BoundColumn) Default() any {
	if c.Column.Default != nil {
		return c.Column.Default
	}
	return c.table.Default()
}

// Localize returns the localization decision for this column: the column
// setting, then the table unlocalize list, then the table localize list.
// A nil result defers to the table L10N settings.
func (c *BoundColumn) Localize() *bool {
	if c.Column.Localize != nil {
		return c.Column.Localize
	}
	if c.table.unlocalize[c.Name] {
		return Bool(false)
	}
	if c.table.localize[c.Name] {
		return Bool(true)
	}
	return nil
}

func (c *BoundColumn) localized() bool {
	if decision := c.Localize(); decision != nil {
		return *decision
	}
	return c.table.l10n.UseL10N
}

// Renderer returns the column renderer, TextRenderer when none is set.
func (c *BoundColumn) Renderer() CellRenderer {
	if c.Column.Renderer != nil {
		return c.Column.Renderer
	}
	return TextRenderer{}
}

// THAttrs returns the header cell attributes. The class lists the column
// name plus "orderable" and the current direction where they apply.
func (c *BoundColumn) THAttrs() HTML {
	classes := []string{c.Name}
	if c.Orderable() {
		classes = append(classes, "orderable")
	}
	if c.IsAscending() {
		classes = append(classes, "asc")
	} else if c.IsDescending() {
		classes = append(classes, "desc")
	}
	return c.Column.Attrs.Cell.Merge(c.Column.Attrs.TH).WithClass(classes...).HTML()
}

// TDAttrs returns the body cell attributes. The class holds the column name.
func (c *BoundColumn) TDAttrs() HTML {
	return c.Column.Attrs.Cell.Merge(c.Column.Attrs.TD).WithClass(c.Name).HTML()
}

// Table returns the table the column belongs to.
func (c *BoundColumn) Table() *Table {
	return c.table
}
