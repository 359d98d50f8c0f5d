// Package tablerouter mounts table handlers on a go-router router.
package tablerouter

import (
	"strings"

	"github.com/goliatone/go-router"
	tablehttp "github.com/goliatone/go-tables/adapters/http"
	"github.com/goliatone/go-tables/tables"
)

// Config configures the go-router adapter.
type Config = tablehttp.Config

// Handler exposes one table at Path for go-router.
type Handler struct {
	path    string
	handler *tablehttp.Handler
}

// NewHandler creates a go-router handler serving the table built by
// cfg.Factory at path.
func NewHandler(path string, cfg Config) (*Handler, error) {
	handler, err := tablehttp.NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &Handler{path: path, handler: handler}, nil
}

// Path is the route the table is mounted on.
func (h *Handler) Path() string {
	if h == nil || strings.TrimSpace(h.path) == "" {
		return "/"
	}
	return h.path
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	path := h.Path()
	r.Get(path, h.Handle)
	if path != "/" && !strings.HasSuffix(path, "/") {
		r.Get(path+"/", h.Handle)
	}
}

// Handle renders the table page or download for c. Contexts backed by
// net/http are served directly; others get a buffered response.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.handler == nil {
		res := newBufferedResponse()
		tablehttp.WriteError(res, tables.NewError(tables.KindInternal, "handler is nil", nil))
		return res.flush(c)
	}

	if httpCtx, ok := router.AsHTTPContext(c); ok {
		req, w := httpCtx.Request(), httpCtx.Response()
		if req != nil && w != nil {
			h.handler.ServeHTTP(w, req)
			return nil
		}
	}

	req, err := newRequest(c)
	if err != nil {
		res := newBufferedResponse()
		tablehttp.WriteError(res, tables.NewError(tables.KindValidation, "invalid request url", err))
		return res.flush(c)
	}
	res := newBufferedResponse()
	h.handler.ServeHTTP(res, req)
	return res.flush(c)
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
