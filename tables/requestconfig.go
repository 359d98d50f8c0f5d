package tables

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// RequestConfig configures a table from an HTTP request: ordering from the
// table's sort parameter, the page and page size from its page parameters,
// and the locale from Accept-Language.
type RequestConfig struct {
	Request *http.Request
	// DisablePagination leaves the table unpaginated.
	DisablePagination bool
	// PerPage overrides the table page size unless the request sets one.
	PerPage int
	Orphans int
	// Strict reports invalid page numbers instead of falling back.
	Strict bool
}

// Configure applies the request to t.
func (rc RequestConfig) Configure(ctx context.Context, t *Table) error {
	if rc.Request == nil {
		return NewError(KindConfiguration, "request config requires a request", nil)
	}
	query := rc.Request.URL.Query()

	if aliases, ok := query[t.PrefixedOrderByField()]; ok {
		t.SetOrderBy(aliases...)
	}

	if t.l10n.Locale == language.Und {
		if header := rc.Request.Header.Get("Accept-Language"); header != "" {
			if tag := NegotiateLocale(header); tag != language.Und {
				t.SetLocale(tag)
			}
		}
	}

	if rc.DisablePagination {
		return nil
	}

	perPage := rc.PerPage
	if raw := strings.TrimSpace(query.Get(t.PrefixedPerPageField())); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			perPage = n
		}
	}
	return t.Paginate(ctx, PaginateOptions{
		Page:    query.Get(t.PrefixedPageField()),
		PerPage: perPage,
		Orphans: rc.Orphans,
		Silent:  !rc.Strict,
	})
}
