package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// RendererRegistry stores renderers by format.
type RendererRegistry struct {
	mu        sync.RWMutex
	renderers map[Format]Renderer
}

// NewRendererRegistry creates an empty registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{renderers: make(map[Format]Renderer)}
}

// DefaultRegistry returns a registry with the CSV, JSON, NDJSON and XLSX
// renderers registered.
func DefaultRegistry() *RendererRegistry {
	reg := NewRendererRegistry()
	reg.renderers[FormatCSV] = CSVRenderer{}
	reg.renderers[FormatJSON] = JSONRenderer{}
	reg.renderers[FormatNDJSON] = ndjsonRenderer{}
	reg.renderers[FormatXLSX] = XLSXRenderer{}
	return reg
}

// Register adds a renderer for a format.
func (r *RendererRegistry) Register(format Format, renderer Renderer) error {
	if format == "" {
		return NewError(KindValidation, "renderer format is required", nil)
	}
	if renderer == nil {
		return NewError(KindValidation, "renderer is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[format]; exists {
		return NewError(KindValidation, fmt.Sprintf("renderer for %q already registered", format), nil)
	}
	r.renderers[format] = renderer
	return nil
}

// Resolve returns the renderer for the format.
func (r *RendererRegistry) Resolve(format Format) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	return renderer, ok
}

// Formats lists the registered formats in lexical order.
func (r *RendererRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]Format, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

type ndjsonRenderer struct{}

func (ndjsonRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	opts.JSON.Mode = JSONModeLines
	return JSONRenderer{}.Render(ctx, schema, rows, w, opts)
}
