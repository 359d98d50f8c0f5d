package tabletemplate

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-tables/tables"
)

//go:embed templates
var embedded embed.FS

// Renderer renders tables and pages with a pongo2 template set.
type Renderer struct {
	set     *pongo2.TemplateSet
	logger  tables.Logger
	debug   bool
	globals pongo2.Context
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	layers  []fs.FS
	logger  tables.Logger
	debug   bool
	globals pongo2.Context
}

// WithFS adds a template file system. Later layers take precedence over
// earlier ones and all of them over the embedded defaults.
func WithFS(fsys fs.FS) Option {
	return func(c *config) {
		if fsys != nil {
			c.layers = append([]fs.FS{fsys}, c.layers...)
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger tables.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDebug disables template caching.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// WithGlobals adds variables visible to every template.
func WithGlobals(globals pongo2.Context) Option {
	return func(c *config) {
		c.globals = c.globals.Update(globals)
	}
}

// New builds a Renderer and registers the table tags with pongo2.
func New(opts ...Option) (*Renderer, error) {
	if err := register(); err != nil {
		return nil, tables.NewError(tables.KindConfiguration, "register template tags", err)
	}

	cfg := config{globals: pongo2.Context{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}

	defaults, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, tables.NewError(tables.KindInternal, "load embedded templates", err)
	}
	loader := &fsLoader{layers: append(cfg.layers, defaults)}

	set := pongo2.NewSet("tables", loader)
	set.Debug = cfg.debug
	set.Globals.Update(cfg.globals)

	return &Renderer{set: set, logger: cfg.logger, debug: cfg.debug, globals: cfg.globals}, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
	defaultErr      error
)

// Default returns a shared Renderer with only the embedded templates.
func Default() (*Renderer, error) {
	defaultOnce.Do(func() {
		defaultRenderer, defaultErr = New()
	})
	return defaultRenderer, defaultErr
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	var (
		tpl *pongo2.Template
		err error
	)
	if r.debug {
		tpl, err = r.set.FromFile(name)
	} else {
		tpl, err = r.set.FromCache(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, tables.NewError(tables.KindNotFound, fmt.Sprintf("template %q not found", name), err)
		}
		return nil, tables.NewError(tables.KindConfiguration, fmt.Sprintf("template %q failed to load", name), err)
	}
	return tpl, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(w io.Writer, name string, data pongo2.Context) error {
	tpl, err := r.template(name)
	if err != nil {
		return err
	}
	return r.execute(tpl, name, w, data)
}

// RenderString executes an inline template with data.
func (r *Renderer) RenderString(source string, data pongo2.Context) (string, error) {
	tpl, err := r.set.FromString(source)
	if err != nil {
		return "", tables.NewError(tables.KindConfiguration, "inline template failed to parse", err)
	}
	out := &bytes.Buffer{}
	if err := r.execute(tpl, "inline", out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (r *Renderer) execute(tpl *pongo2.Template, name string, w io.Writer, data pongo2.Context) error {
	ctx := pongo2.Context{rendererKey: r}.Update(data)
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		r.logger.Errorf("tables: template %s: %v", name, err)
		return tables.NewError(tables.KindInternal, fmt.Sprintf("template %q failed to render", name), err)
	}
	return nil
}

// RenderTable renders t with the named template, the table template when
// name is empty. req supplies the query string for links and may be nil.
func (r *Renderer) RenderTable(ctx context.Context, w io.Writer, t *tables.Table, req *http.Request, name string) error {
	if t == nil {
		return tables.NewError(tables.KindValidation, "render table requires a table", nil)
	}
	if name == "" {
		name = t.Template()
	}
	view, err := NewView(ctx, t, req)
	if err != nil {
		return err
	}
	data := pongo2.Context{"table": t, "view": view}
	if req != nil {
		data["request"] = req
	}
	return r.Render(w, name, data)
}

// AsHTML renders t with its own template and no request.
func (r *Renderer) AsHTML(ctx context.Context, t *tables.Table) (string, error) {
	out := &bytes.Buffer{}
	if err := r.RenderTable(ctx, out, t, nil, ""); err != nil {
		return "", err
	}
	return out.String(), nil
}

// fsLoader resolves template names against layered file systems.
type fsLoader struct {
	layers []fs.FS
}

func (l *fsLoader) Abs(base, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l *fsLoader) Get(name string) (io.Reader, error) {
	for _, layer := range l.layers {
		data, err := fs.ReadFile(layer, name)
		if err == nil {
			return bytes.NewReader(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("template %s: %w", name, fs.ErrNotExist)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
