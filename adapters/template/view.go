package tabletemplate

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-tables/tables"
)

// View is the rendered form of a table handed to templates. Markup fields
// are already escaped and should be written with the safe filter.
type View struct {
	Table     *tables.Table
	Attrs     tables.HTML
	Columns   []ColumnView
	Rows      []RowView
	EmptyText string
	Page      *PageView
}

// ColumnView is a visible column with its header attributes and the URL
// that toggles ordering by it.
type ColumnView struct {
	*tables.BoundColumn
	Attrs   tables.HTML
	SortURL string
}

// RowView is one rendered row.
type RowView struct {
	Index  int
	Record any
	Cells  []CellView
}

// CellView is one rendered cell.
type CellView struct {
	Column string
	Attrs  tables.HTML
	HTML   tables.HTML
}

func (c CellView) String() string {
	return string(c.HTML)
}

// PageView holds the pagination chrome for the current page.
type PageView struct {
	Number        int
	NumPages      int
	HasPrevious   bool
	HasNext       bool
	HasOtherPages bool
	PreviousURL   string
	NextURL       string
	Previous      string
	Next          string
	Current       string
	Cardinality   string
}

// NewView renders the current rows of t. Links are built from the query of
// req, which may be nil.
func NewView(ctx context.Context, t *tables.Table, req *http.Request) (*View, error) {
	query := url.Values{}
	if req != nil {
		query = req.URL.Query()
	}

	view := &View{Table: t, Attrs: t.Attrs(), EmptyText: t.EmptyText()}
	for _, column := range t.Columns() {
		view.Columns = append(view.Columns, ColumnView{
			BoundColumn: column,
			Attrs:       column.THAttrs(),
			SortURL:     tables.Querystring(query, url.Values{t.PrefixedOrderByField(): {column.NextOrder()}}),
		})
	}

	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		items, err := row.Items()
		if err != nil {
			return nil, err
		}
		rv := RowView{Index: row.Index, Record: row.Record, Cells: make([]CellView, len(items))}
		for i, item := range items {
			rv.Cells[i] = CellView{Column: item.Column.Name, Attrs: item.Column.TDAttrs(), HTML: item.Cell}
		}
		view.Rows = append(view.Rows, rv)
	}

	if page := t.Page(); page != nil {
		view.Page = newPageView(t, page, query)
	}
	return view, nil
}

func newPageView(t *tables.Table, page *tables.Page, query url.Values) *PageView {
	p := printer(t.L10N().Locale)
	pageURL := func(number int) string {
		return tables.Querystring(query, url.Values{t.PrefixedPageField(): {strconv.Itoa(number)}})
	}

	view := &PageView{
		Number:        page.Number,
		NumPages:      page.NumPages(),
		HasPrevious:   page.HasPrevious(),
		HasNext:       page.HasNext(),
		HasOtherPages: page.HasOtherPages(),
		Previous:      p.Sprintf(labelPrevious),
		Next:          p.Sprintf(labelNext),
		Current:       p.Sprintf(labelPageOf, page.Number, page.NumPages()),
	}
	if view.HasPrevious {
		view.PreviousURL = pageURL(page.PreviousPageNumber())
	}
	if view.HasNext {
		view.NextURL = pageURL(page.NextPageNumber())
	}

	total := page.Count()
	cardinality := p.Sprint(total)
	if page.Len() != total {
		cardinality = p.Sprintf(labelCardinality, page.Len(), total)
	}
	view.Cardinality = cardinality + " " + t.VerboseName(total)
	return view
}
