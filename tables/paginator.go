package tables

import (
	"context"
	"strconv"
	"strings"
)

// Paginator splits Data into pages of PerPage records. When the last page
// would hold Orphans records or fewer they are folded into the page before.
type Paginator struct {
	data                *Data
	PerPage             int
	Orphans             int
	AllowEmptyFirstPage bool
}

// NewPaginator creates a paginator that allows an empty first page.
func NewPaginator(data *Data, perPage, orphans int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if orphans < 0 {
		orphans = 0
	}
	return &Paginator{data: data, PerPage: perPage, Orphans: orphans, AllowEmptyFirstPage: true}
}

// Count returns the total number of records.
func (p *Paginator) Count(ctx context.Context) (int, error) {
	return p.data.Len(ctx)
}

// NumPages returns the number of pages.
func (p *Paginator) NumPages(ctx context.Context) (int, error) {
	count, err := p.Count(ctx)
	if err != nil {
		return 0, err
	}
	return p.numPages(count), nil
}

func (p *Paginator) numPages(count int) int {
	if count == 0 && !p.AllowEmptyFirstPage {
		return 0
	}
	hits := max(1, count-p.Orphans)
	return (hits + p.PerPage - 1) / p.PerPage
}

// ValidateNumber parses a page number. "last" selects the last page. It
// returns errors wrapping ErrPageNotAnInteger or ErrEmptyPage.
func (p *Paginator) ValidateNumber(ctx context.Context, raw string) (int, error) {
	count, err := p.Count(ctx)
	if err != nil {
		return 0, err
	}
	numPages := p.numPages(count)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "1"
	}
	if raw == "last" {
		if numPages == 0 {
			return 0, NewError(KindNotFound, "that page contains no results", ErrEmptyPage)
		}
		return numPages, nil
	}
	number, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewError(KindValidation, "that page number is not an integer", ErrPageNotAnInteger)
	}
	if number < 1 {
		return 0, NewError(KindNotFound, "that page number is less than 1", ErrEmptyPage)
	}
	if number > numPages {
		if number == 1 && p.AllowEmptyFirstPage {
			return number, nil
		}
		return 0, NewError(KindNotFound, "that page contains no results", ErrEmptyPage)
	}
	return number, nil
}

// Page loads the records of a page.
func (p *Paginator) Page(ctx context.Context, raw string) (*Page, error) {
	number, err := p.ValidateNumber(ctx, raw)
	if err != nil {
		return nil, err
	}
	return p.load(ctx, number)
}

func (p *Paginator) load(ctx context.Context, number int) (*Page, error) {
	count, err := p.Count(ctx)
	if err != nil {
		return nil, err
	}
	bottom := (number - 1) * p.PerPage
	top := bottom + p.PerPage
	if top+p.Orphans >= count {
		top = count
	}

	items := []any{}
	if top > bottom {
		items, err = p.data.Slice(ctx, bottom, top-bottom)
		if err != nil {
			return nil, err
		}
	}
	return &Page{
		Number:   number,
		Items:    items,
		count:    count,
		numPages: p.numPages(count),
		perPage:  p.PerPage,
	}, nil
}

// Page is one page of records.
type Page struct {
	Number   int
	Items    []any
	count    int
	numPages int
	perPage  int
}

func (p *Page) Len() int {
	return len(p.Items)
}

// Count returns the number of records across all pages.
func (p *Page) Count() int {
	return p.count
}

func (p *Page) NumPages() int {
	return p.numPages
}

func (p *Page) HasNext() bool {
	return p.Number < p.numPages
}

func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page) PreviousPageNumber() int {
	return p.Number - 1
}

// StartIndex is the 1-based index of the first record on the page.
func (p *Page) StartIndex() int {
	if p.count == 0 {
		return 0
	}
	return p.perPage*(p.Number-1) + 1
}

// EndIndex is the 1-based index of the last record on the page.
func (p *Page) EndIndex() int {
	if p.Number == p.numPages {
		return p.count
	}
	return p.Number * p.perPage
}
