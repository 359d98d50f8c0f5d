// Package tablehttp serves tables over net/http: an HTML page by default
// and a file download when the export parameter names a format.
package tablehttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	errorslib "github.com/goliatone/go-errors"
	tabletemplate "github.com/goliatone/go-tables/adapters/template"
	"github.com/goliatone/go-tables/export"
	"github.com/goliatone/go-tables/tables"
)

// DefaultExportParam is the query parameter that triggers a download.
const DefaultExportParam = "_export"

// Factory builds the table for one request.
type Factory func(r *http.Request) (*tables.Table, error)

// Config configures a Handler.
type Config struct {
	Factory  Factory
	Renderer *tabletemplate.Renderer
	// Template is the page template. It sees "table" and "request" and
	// usually calls render_table. Empty renders the table template alone.
	Template string
	// Context adds variables to the page template.
	Context func(r *http.Request) pongo2.Context
	// RequestConfig carries pagination settings; its Request is set per call.
	RequestConfig tables.RequestConfig
	ExportParam   string
	// Formats limits downloads. Empty allows every format the table can render.
	Formats         []export.Format
	FilenamePattern string
	Logger          tables.Logger
	Now             func() time.Time
}

// Handler renders or exports a table per request.
type Handler struct {
	cfg Config
}

// NewHandler validates cfg and fills defaults.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Factory == nil {
		return nil, tables.NewError(tables.KindConfiguration, "table handler requires a factory", nil)
	}
	if cfg.Renderer == nil {
		renderer, err := tabletemplate.Default()
		if err != nil {
			return nil, err
		}
		cfg.Renderer = renderer
	}
	if cfg.ExportParam == "" {
		cfg.ExportParam = DefaultExportParam
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Formats = slices.Clone(cfg.Formats)
	for i, format := range cfg.Formats {
		cfg.Formats[i] = export.NormalizeFormat(format)
	}
	return &Handler{cfg: cfg}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table, err := h.cfg.Factory(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get(h.cfg.ExportParam)); raw != "" {
		h.serveExport(w, r, table, export.Format(raw))
		return
	}
	h.servePage(w, r, table)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, table *tables.Table) {
	rc := h.cfg.RequestConfig
	rc.Request = r
	if err := rc.Configure(r.Context(), table); err != nil {
		WriteError(w, err)
		return
	}

	buf := &bytes.Buffer{}
	var err error
	if h.cfg.Template == "" {
		err = h.cfg.Renderer.RenderTable(r.Context(), buf, table, r, "")
	} else {
		data := pongo2.Context{"table": table, "request": r}
		if h.cfg.Context != nil {
			data.Update(h.cfg.Context(r))
		}
		err = h.cfg.Renderer.Render(buf, h.cfg.Template, data)
	}
	if err != nil {
		h.cfg.Logger.Errorf("tables: %s: render failed: %v", table.Name(), err)
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.cfg.Logger.Errorf("tables: %s: page write failed: %v", table.Name(), err)
	}
}

func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request, table *tables.Table, format export.Format) {
	format = export.NormalizeFormat(format)
	if len(h.cfg.Formats) > 0 && !slices.Contains(h.cfg.Formats, format) {
		WriteError(w, tables.NewError(tables.KindNotImpl, fmt.Sprintf("export format %s is not enabled", format), nil))
		return
	}

	rc := h.cfg.RequestConfig
	rc.Request = r
	rc.DisablePagination = true
	if err := rc.Configure(r.Context(), table); err != nil {
		WriteError(w, err)
		return
	}

	filename, err := export.Filename(h.cfg.FilenamePattern, table.Name(), format, h.cfg.Now())
	if err != nil {
		WriteError(w, err)
		return
	}
	setDownloadHeaders(w, filename, export.ContentType(format))

	tracker := &trackingWriter{writer: w}
	stats, err := table.Export(r.Context(), format, tracker, tables.ExportOptions{})
	if err != nil {
		if !tracker.Written() {
			clearDownloadHeaders(w)
			WriteError(w, err)
			return
		}
		h.cfg.Logger.Errorf("tables: %s: export failed after write: %v", table.Name(), err)
		return
	}
	h.cfg.Logger.Infof("tables: %s: served %s download with %d rows", table.Name(), format, stats.Rows)
}

// ErrorResponse is the JSON body of error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteError writes err as JSON with a status derived from its category.
func WriteError(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ge := tables.AsGoError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusForError(ge))
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorBody{Message: ge.Message, Code: ge.TextCode},
	})
}

// StatusForError maps a go-errors error to an HTTP status.
func StatusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryAuthz:
		return http.StatusForbidden
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
}

func clearDownloadHeaders(w http.ResponseWriter) {
	w.Header().Del("Content-Disposition")
	w.Header().Del("Content-Type")
}

type trackingWriter struct {
	writer  io.Writer
	written bool
}

func (w *trackingWriter) Write(p []byte) (int, error) {
	w.written = true
	return w.writer.Write(p)
}

func (w *trackingWriter) Written() bool {
	return w.written
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
