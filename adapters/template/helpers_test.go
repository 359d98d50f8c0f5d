package tabletemplate

import (
	"strings"
	"testing"

	"github.com/goliatone/go-tables/tables"
	"golang.org/x/net/html"
)

var countries = []map[string]any{
	{"name": "Germany", "capital": "Berlin", "population": 83, "calling_code": 49},
	{"name": "France", "population": 64, "currency": "Euro (€)", "calling_code": 33},
	{"name": "Netherlands", "capital": "Amsterdam", "calling_code": 31},
	{"name": "Austria", "calling_code": 43, "currency": "Euro (€)", "population": 8},
}

func countrySpec() tables.Spec {
	return tables.Spec{
		Name: "countries",
		Columns: []tables.Column{
			{Name: "name"},
			{Name: "capital"},
			{Name: "population", VerboseName: "population size"},
			{Name: "calling_code", VerboseName: "phone ext."},
		},
	}
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	renderer, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func newCountryTable(t *testing.T, data any, opts ...tables.Option) *tables.Table {
	t.Helper()
	table, err := tables.New(countrySpec(), data, opts...)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func parseHTML(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// selectPath returns the elements reached from any descendant named
// path[0] through direct children named by the rest of path.
func selectPath(root *html.Node, path ...string) []*html.Node {
	var current []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == path[0] {
			current = append(current, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, tag := range path[1:] {
		var next []*html.Node
		for _, n := range current {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == tag {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func withClass(nodes []*html.Node, class string) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
