package tables

import (
	"html"
	"sort"
	"strings"
)

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// HTML is trusted markup. It is written to templates without escaping.
type HTML string

// Escape returns s with HTML special characters escaped.
func Escape(s string) HTML {
	return HTML(html.EscapeString(s))
}

// Attrs are HTML attributes for a single element.
type Attrs map[string]string

// HTML renders the attributes as `key="value"` pairs sorted by key.
func (a Attrs) HTML() HTML {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, html.EscapeString(key)+`="`+html.EscapeString(a[key])+`"`)
	}
	return HTML(strings.Join(parts, " "))
}

// Merge returns a copy of a overlaid with other. Class values are joined.
func (a Attrs) Merge(other Attrs) Attrs {
	out := make(Attrs, len(a)+len(other))
	for key, value := range a {
		out[key] = value
	}
	for key, value := range other {
		if key == "class" {
			if joined := joinClasses(out[key], value); joined != "" {
				out[key] = joined
			}
			continue
		}
		out[key] = value
	}
	return out
}

// WithClass returns a copy of a with classes appended to its class attribute.
func (a Attrs) WithClass(classes ...string) Attrs {
	return a.Merge(Attrs{"class": strings.Join(classes, " ")})
}

func joinClasses(values ...string) string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, value := range values {
		for _, class := range strings.Fields(value) {
			if _, ok := seen[class]; ok {
				continue
			}
			seen[class] = struct{}{}
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}

// ColumnAttrs holds attributes for the elements a column renders. Cell
// attributes apply to both th and td.
type ColumnAttrs struct {
	Cell  Attrs
	TH    Attrs
	TD    Attrs
	A     Attrs
	Input Attrs
}

// Bool returns a pointer to v, for optional flags such as Column.Orderable.
func Bool(v bool) *bool {
	return &v
}
