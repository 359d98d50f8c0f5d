package tablesql

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-tables/tables"
)

// Definition registers a named query. Query may use the driver placeholders
// and receives the arguments built from the source params.
type Definition struct {
	Name  string
	Query string
	// Columns lists the result columns. When empty they are discovered from
	// the query.
	Columns  []string
	Validate func(params any) error
	Args     func(params any) ([]any, error)
	// VerboseName and VerboseNamePlural name the rows ("country").
	VerboseName       string
	VerboseNamePlural string
}

// Registry stores named query definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a named query definition.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return tables.NewError(tables.KindValidation, "query name is required", nil)
	}
	def.Query = strings.TrimRight(strings.TrimSpace(def.Query), ";")
	if def.Query == "" {
		return tables.NewError(tables.KindValidation, "query string is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return tables.NewError(tables.KindValidation, fmt.Sprintf("query %q already registered", def.Name), nil)
	}
	r.defs[def.Name] = def
	return nil
}

// Resolve returns a query definition by name.
func (r *Registry) Resolve(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}
