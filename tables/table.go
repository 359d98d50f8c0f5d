package tables

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-tables/export"
	"golang.org/x/text/language"
)

const (
	// DefaultValue is shown for missing values unless a default is set.
	DefaultValue = "—"
	// DefaultTemplate is the template render helpers use for a table.
	DefaultTemplate = "tables/table.html"
	// DefaultPerPage is the page size used when none is configured.
	DefaultPerPage = 25
	// Wildcard expands to the columns a sequence does not name.
	Wildcard = "..."
)

// Spec declares a table.
type Spec struct {
	Name    string
	Columns []Column
	// Sequence orders columns. It must name every column unless it holds
	// the Wildcard, which stands for the remaining columns in declared order.
	Sequence []string
	// Exclude removes columns from the table.
	Exclude []string
	// OrderBy is the initial ordering, as aliases ("name", "-population").
	OrderBy   []string
	Orderable *bool
	EmptyText string
	// Default replaces missing values. Nil means DefaultValue.
	Default  any
	Template string
	PerPage  int
	// Prefix is prepended to the query parameter names below.
	Prefix       string
	OrderByField string
	PageField    string
	PerPageField string
	Attrs        Attrs
	// Localize and Unlocalize list columns forced on or off; Unlocalize wins.
	Localize   []string
	Unlocalize []string
	// VerboseName and VerboseNamePlural name the records ("item", "items").
	VerboseName       string
	VerboseNamePlural string
}

// Option overrides Spec settings for one table instance.
type Option func(*options)

type options struct {
	orderBy   []string
	exclude   []string
	sequence  []string
	emptyText *string
	template  string
	perPage   int
	prefix    *string
	attrs     Attrs
	def       any
	orderable *bool
	l10n      *L10NSettings
	logger    Logger
	renderers *export.RendererRegistry
}

func WithOrderBy(aliases ...string) Option {
	return func(o *options) { o.orderBy = aliases }
}

func WithExclude(names ...string) Option {
	return func(o *options) { o.exclude = names }
}

func WithSequence(names ...string) Option {
	return func(o *options) { o.sequence = names }
}

func WithEmptyText(text string) Option {
	return func(o *options) { o.emptyText = &text }
}

func WithTemplate(name string) Option {
	return func(o *options) { o.template = name }
}

func WithPerPage(n int) Option {
	return func(o *options) { o.perPage = n }
}

func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = &prefix }
}

func WithAttrs(attrs Attrs) Option {
	return func(o *options) { o.attrs = attrs }
}

func WithDefault(value any) Option {
	return func(o *options) { o.def = value }
}

func WithOrderable(orderable bool) Option {
	return func(o *options) { o.orderable = &orderable }
}

// WithL10N sets localization settings.
func WithL10N(settings L10NSettings) Option {
	return func(o *options) { o.l10n = &settings }
}

func WithLogger(logger Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRenderers sets the export renderers, replacing export.DefaultRegistry.
func WithRenderers(registry *export.RendererRegistry) Option {
	return func(o *options) { o.renderers = registry }
}

// Table binds columns to data. A Table is not safe for concurrent use.
type Table struct {
	name       string
	spec       Spec
	data       *Data
	columns    []*BoundColumn
	byName     map[string]*BoundColumn
	orderBy    OrderByTuple
	orderable  bool
	emptyText  string
	template   string
	perPage    int
	prefix     string
	attrs      Attrs
	def        any
	localize   map[string]bool
	unlocalize map[string]bool
	l10n       L10NSettings
	logger     Logger
	renderers  *export.RendererRegistry

	paginator *Paginator
	page      *Page
}

// New validates spec and binds it to data. When spec declares no columns
// they are derived from the data.
func New(spec Spec, data any, opts ...Option) (*Table, error) {
	wrapped, err := NewData(data)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	t := &Table{
		name:       spec.Name,
		spec:       spec,
		data:       wrapped,
		byName:     make(map[string]*BoundColumn),
		orderable:  true,
		emptyText:  spec.EmptyText,
		template:   spec.Template,
		perPage:    spec.PerPage,
		prefix:     spec.Prefix,
		attrs:      spec.Attrs,
		def:        spec.Default,
		localize:   toSet(spec.Localize),
		unlocalize: toSet(spec.Unlocalize),
		logger:     nopLogger{},
		renderers:  export.DefaultRegistry(),
	}
	if spec.Orderable != nil {
		t.orderable = *spec.Orderable
	}
	t.applyOptions(o)

	declared := spec.Columns
	if len(declared) == 0 {
		declared = autoColumns(wrapped)
	}
	if err := t.bindColumns(declared, firstNonEmpty(o.sequence, spec.Sequence), append(slices.Clone(spec.Exclude), o.exclude...)); err != nil {
		return nil, err
	}
	for _, name := range append(slices.Clone(spec.Localize), spec.Unlocalize...) {
		if _, ok := t.byName[name]; !ok {
			if !slices.Contains(spec.Exclude, name) && !slices.Contains(o.exclude, name) {
				return nil, NewError(KindConfiguration, fmt.Sprintf("localize names unknown column %q", name), nil)
			}
		}
	}

	orderBy := spec.OrderBy
	if o.orderBy != nil {
		orderBy = o.orderBy
	}
	if len(orderBy) > 0 {
		t.SetOrderBy(orderBy...)
	}
	return t, nil
}

// MustNew is New that panics on error, for package-level table declarations.
func MustNew(spec Spec, data any, opts ...Option) *Table {
	t, err := New(spec, data, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) applyOptions(o options) {
	if o.emptyText != nil {
		t.emptyText = *o.emptyText
	}
	if o.template != "" {
		t.template = o.template
	}
	if o.perPage > 0 {
		t.perPage = o.perPage
	}
	if o.prefix != nil {
		t.prefix = *o.prefix
	}
	if o.attrs != nil {
		t.attrs = o.attrs
	}
	if o.def != nil {
		t.def = o.def
	}
	if o.orderable != nil {
		t.orderable = *o.orderable
	}
	if o.l10n != nil {
		t.l10n = *o.l10n
	}
	if o.logger != nil {
		t.logger = o.logger
	}
	if o.renderers != nil {
		t.renderers = o.renderers
	}
}

func autoColumns(data *Data) []Column {
	fields := data.Fields()
	columns := make([]Column, len(fields))
	for i, field := range fields {
		columns[i] = Column{Name: field.Name, VerboseName: field.VerboseName, Type: field.Type}
	}
	return columns
}

func (t *Table) bindColumns(declared []Column, sequence, exclude []string) error {
	byName := make(map[string]Column, len(declared))
	names := make([]string, 0, len(declared))
	for _, column := range declared {
		name := strings.TrimSpace(column.Name)
		if name == "" {
			return NewError(KindConfiguration, "column name is required", nil)
		}
		if name == Wildcard {
			return NewError(KindConfiguration, fmt.Sprintf("column name %q is reserved", name), nil)
		}
		if _, ok := byName[name]; ok {
			return NewError(KindConfiguration, fmt.Sprintf("duplicate column %q", name), nil)
		}
		column.Name = name
		byName[name] = column
		names = append(names, name)
	}

	for _, name := range exclude {
		if _, ok := byName[name]; !ok {
			return NewError(KindConfiguration, fmt.Sprintf("exclude names unknown column %q", name), nil)
		}
	}
	if len(sequence) > 0 {
		expanded, err := expandSequence(sequence, names)
		if err != nil {
			return err
		}
		names = expanded
	}

	excluded := toSet(exclude)
	for _, name := range names {
		if excluded[name] {
			continue
		}
		bound := &BoundColumn{Column: byName[name], Name: name, table: t}
		t.columns = append(t.columns, bound)
		t.byName[name] = bound
	}
	return nil
}

func expandSequence(sequence, names []string) ([]string, error) {
	known := toSet(names)
	seen := make(map[string]bool, len(sequence))
	wildcards := 0
	for _, name := range sequence {
		if name == Wildcard {
			wildcards++
			continue
		}
		if !known[name] {
			return nil, NewError(KindConfiguration, fmt.Sprintf("sequence names unknown column %q", name), nil)
		}
		if seen[name] {
			return nil, NewError(KindConfiguration, fmt.Sprintf("sequence repeats column %q", name), nil)
		}
		seen[name] = true
	}
	if wildcards > 1 {
		return nil, NewError(KindConfiguration, "sequence may hold one wildcard", nil)
	}

	rest := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	if wildcards == 0 {
		if len(rest) > 0 {
			return nil, NewError(KindConfiguration, fmt.Sprintf("sequence does not name columns %s; add %q to include them", strings.Join(rest, ", "), Wildcard), nil)
		}
		return sequence, nil
	}

	out := make([]string, 0, len(names))
	for _, name := range sequence {
		if name == Wildcard {
			out = append(out, rest...)
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}

func firstNonEmpty(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func (t *Table) Name() string {
	return t.name
}

// Data returns the wrapped data.
func (t *Table) Data() *Data {
	return t.data
}

// Columns returns the visible columns in order.
func (t *Table) Columns() []*BoundColumn {
	out := make([]*BoundColumn, 0, len(t.columns))
	for _, column := range t.columns {
		if column.Visible() {
			out = append(out, column)
		}
	}
	return out
}

// AllColumns returns every bound column, hidden ones included.
func (t *Table) AllColumns() []*BoundColumn {
	return slices.Clone(t.columns)
}

// Column returns a bound column by name.
func (t *Table) Column(name string) (*BoundColumn, bool) {
	column, ok := t.byName[name]
	return column, ok
}

// OrderBy returns the current ordering.
func (t *Table) OrderBy() OrderByTuple {
	return slices.Clone(t.orderBy)
}

// SetOrderBy orders the table. Aliases naming unknown or non-orderable
// columns are dropped. Each alias is translated into the column's sort
// accessors, reversed for descending aliases. Any page is discarded.
func (t *Table) SetOrderBy(aliases ...string) {
	valid := make(OrderByTuple, 0, len(aliases))
	for _, alias := range ParseOrderBy(aliases...) {
		column, ok := t.byName[alias.Bare()]
		if !ok || !column.Orderable() {
			t.logger.Debugf("tables: %s: ignoring order alias %q", t.name, alias)
			continue
		}
		if valid.Contains(alias.Bare()) {
			continue
		}
		valid = append(valid, alias)
	}
	t.orderBy = valid

	sorts := make([]Sort, 0, len(valid))
	for _, alias := range valid {
		for _, key := range t.byName[alias.Bare()].OrderBy() {
			if alias.IsDescending() {
				key = key.Opposite()
			}
			sorts = append(sorts, Sort{Field: key.Bare(), Desc: key.IsDescending()})
		}
	}
	t.data.OrderBy(sorts)
	t.paginator, t.page = nil, nil
}

// PaginateOptions select a page. Page is the raw page number; empty means
// the first page and "last" the last one. Silent turns invalid numbers into
// the first page and out of range numbers into the last page.
type PaginateOptions struct {
	Page    string
	PerPage int
	Orphans int
	Silent  bool
}

// Paginate loads one page of records. Without Silent an invalid page
// returns an error wrapping ErrPageNotAnInteger or ErrEmptyPage.
func (t *Table) Paginate(ctx context.Context, opts PaginateOptions) error {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = t.PerPage()
	}
	paginator := NewPaginator(t.data, perPage, opts.Orphans)

	page, err := paginator.Page(ctx, opts.Page)
	if err != nil && opts.Silent {
		switch {
		case errors.Is(err, ErrPageNotAnInteger):
			page, err = paginator.Page(ctx, "1")
		case errors.Is(err, ErrEmptyPage):
			page, err = paginator.Page(ctx, "last")
			if errors.Is(err, ErrEmptyPage) {
				page, err = paginator.Page(ctx, "1")
			}
		}
	}
	if err != nil {
		return err
	}
	t.paginator, t.page = paginator, page
	t.logger.Debugf("tables: %s: page %d of %d", t.name, page.Number, page.NumPages())
	return nil
}

// Page returns the current page, or nil when the table is not paginated.
func (t *Table) Page() *Page {
	return t.page
}

// Paginator returns the paginator of the current page, if any.
func (t *Table) Paginator() *Paginator {
	return t.paginator
}

// Rows returns the rows of the current page, or all rows when the table is
// not paginated.
func (t *Table) Rows(ctx context.Context) ([]*BoundRow, error) {
	if t.page != nil {
		return t.PageRows(), nil
	}
	records, err := t.data.Slice(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return t.bindRows(records, 0), nil
}

// PageRows returns the rows of the current page, nil when not paginated.
func (t *Table) PageRows() []*BoundRow {
	if t.page == nil {
		return nil
	}
	return t.bindRows(t.page.Items, t.page.StartIndex()-1)
}

func (t *Table) bindRows(records []any, offset int) []*BoundRow {
	rows := make([]*BoundRow, len(records))
	for i, record := range records {
		rows[i] = &BoundRow{Record: record, Index: offset + i, table: t}
	}
	return rows
}

// Len returns the number of records in the table.
func (t *Table) Len(ctx context.Context) (int, error) {
	return t.data.Len(ctx)
}

func (t *Table) EmptyText() string {
	return t.emptyText
}

// Template returns the template name, DefaultTemplate when unset.
func (t *Table) Template() string {
	if t.template == "" {
		return DefaultTemplate
	}
	return t.template
}

// PerPage returns the configured page size, DefaultPerPage when unset.
func (t *Table) PerPage() int {
	if t.perPage <= 0 {
		return DefaultPerPage
	}
	return t.perPage
}

// Attrs returns the table element attributes.
func (t *Table) Attrs() HTML {
	return t.attrs.HTML()
}

// Default returns the table-wide value for missing data.
func (t *Table) Default() any {
	if t.def == nil {
		return DefaultValue
	}
	return t.def
}

func (t *Table) Prefix() string {
	return t.prefix
}

// PrefixedOrderByField returns the query parameter holding the ordering.
func (t *Table) PrefixedOrderByField() string {
	return t.prefix + fieldOr(t.spec.OrderByField, "sort")
}

// PrefixedPageField returns the query parameter holding the page number.
func (t *Table) PrefixedPageField() string {
	return t.prefix + fieldOr(t.spec.PageField, "page")
}

// PrefixedPerPageField returns the query parameter holding the page size.
func (t *Table) PrefixedPerPageField() string {
	return t.prefix + fieldOr(t.spec.PerPageField, "per_page")
}

func fieldOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// L10N returns the localization settings.
func (t *Table) L10N() L10NSettings {
	return t.l10n
}

// SetLocale sets the locale used for localized columns.
func (t *Table) SetLocale(tag language.Tag) {
	t.l10n.Locale = tag
}

// VerboseName returns the singular or plural record name for n records.
// It comes from the table Spec, then the source, then "item"/"items".
func (t *Table) VerboseName(n int) string {
	singular, plural := t.spec.VerboseName, t.spec.VerboseNamePlural
	if singular == "" {
		if s, p, ok := t.data.VerboseName(); ok {
			singular, plural = s, p
		}
	}
	if singular == "" {
		singular = "item"
	}
	if plural == "" {
		plural = singular + "s"
	}
	if n == 1 {
		return singular
	}
	return plural
}

// Logger returns the table logger.
func (t *Table) Logger() Logger {
	return t.logger
}

// Renderers returns the export renderers.
func (t *Table) Renderers() *export.RendererRegistry {
	return t.renderers
}
