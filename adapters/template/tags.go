package tabletemplate

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-tables/tables"
)

// rendererKey holds the Renderer in the public template context so
// render_table can resolve templates from the same set.
const rendererKey = "tables_renderer"

var (
	registerOnce sync.Once
	registerErr  error
)

// register installs the tags and filters once per process.
func register() error {
	registerOnce.Do(func() {
		for name, parser := range map[string]pongo2.TagParser{
			"render_table": parseRenderTable,
			"querystring":  parseQuerystring,
			"nospaceless":  parseNospaceless,
		} {
			if err := pongo2.RegisterTag(name, parser); err != nil {
				registerErr = err
				return
			}
		}
		registerErr = pongo2.ReplaceFilter("title", filterTitle)
	})
	return registerErr
}

func filterTitle(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(tables.Title(in.String())), nil
}

func requestFrom(ctx *pongo2.ExecutionContext) *http.Request {
	req, _ := ctx.Public["request"].(*http.Request)
	return req
}

type renderTableNode struct {
	position *pongo2.Token
	table    pongo2.IEvaluator
	template pongo2.IEvaluator
}

func parseRenderTable(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &renderTableNode{position: start}

	table, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.table = table

	if arguments.Remaining() > 0 {
		if node.template, err = arguments.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("render_table takes a table and an optional template name.", nil)
	}
	return node, nil
}

func (n *renderTableNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	value, perr := n.table.Evaluate(ctx)
	if perr != nil {
		return perr
	}
	if value.IsNil() {
		return ctx.Error("render_table expected a table or data, got nothing", n.position)
	}

	req := requestFrom(ctx)
	goctx := context.Background()
	if req != nil {
		goctx = req.Context()
	}

	table, ok := value.Interface().(*tables.Table)
	if !ok {
		var err error
		if table, err = tables.New(tables.Spec{}, value.Interface()); err != nil {
			return ctx.OrigError(err, n.position)
		}
		if req != nil {
			if err := (tables.RequestConfig{Request: req}).Configure(goctx, table); err != nil {
				return ctx.OrigError(err, n.position)
			}
		}
	}

	name := table.Template()
	if n.template != nil {
		tpl, perr := n.template.Evaluate(ctx)
		if perr != nil {
			return perr
		}
		name = tpl.String()
	}

	renderer, _ := ctx.Public[rendererKey].(*Renderer)
	if renderer == nil {
		var err error
		if renderer, err = Default(); err != nil {
			return ctx.OrigError(err, n.position)
		}
	}

	out := &bytes.Buffer{}
	if err := renderer.RenderTable(goctx, out, table, req, name); err != nil {
		return ctx.OrigError(err, n.position)
	}
	if _, err := writer.WriteString(out.String()); err != nil {
		return ctx.OrigError(err, n.position)
	}
	return nil
}

type querystringPair struct {
	key   pongo2.IEvaluator
	value pongo2.IEvaluator
}

type querystringNode struct {
	position *pongo2.Token
	pairs    []querystringPair
	without  []pongo2.IEvaluator
}

func parseQuerystring(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &querystringNode{position: start}

	for arguments.Remaining() > 0 {
		if arguments.Match(pongo2.TokenIdentifier, "without") != nil {
			break
		}
		key, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		if arguments.Match(pongo2.TokenSymbol, "=") == nil {
			return nil, arguments.Error("querystring expects key=value pairs.", nil)
		}
		value, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		node.pairs = append(node.pairs, querystringPair{key: key, value: value})
	}

	for arguments.Remaining() > 0 {
		key, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		node.without = append(node.without, key)
	}
	return node, nil
}

func (n *querystringNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	req := requestFrom(ctx)
	if req == nil {
		return ctx.Error("querystring requires an *http.Request as 'request' in the template context", n.position)
	}

	set := url.Values{}
	for _, pair := range n.pairs {
		key, err := pair.key.Evaluate(ctx)
		if err != nil {
			return err
		}
		value, err := pair.value.Evaluate(ctx)
		if err != nil {
			return err
		}
		set.Set(key.String(), value.String())
	}

	without := make([]string, 0, len(n.without))
	for _, expr := range n.without {
		key, err := expr.Evaluate(ctx)
		if err != nil {
			return err
		}
		without = append(without, key.String())
	}

	qs := tables.Querystring(req.URL.Query(), set, without...)
	if _, err := writer.WriteString(html.EscapeString(qs)); err != nil {
		return ctx.OrigError(err, n.position)
	}
	return nil
}

var betweenTags = regexp.MustCompile(`>\s+<`)

// nospaceless keeps a single space between tags so an enclosing spaceless
// block cannot collapse it.
type nospacelessNode struct {
	wrapper *pongo2.NodeWrapper
}

func parseNospaceless(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	wrapper, endArgs, err := doc.WrapUntilTag("endnospaceless")
	if err != nil {
		return nil, err
	}
	if arguments.Remaining() > 0 || endArgs.Remaining() > 0 {
		return nil, arguments.Error("nospaceless takes no arguments.", nil)
	}
	return &nospacelessNode{wrapper: wrapper}, nil
}

func (n *nospacelessNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	buf := &bytes.Buffer{}
	if err := n.wrapper.Execute(ctx, buf); err != nil {
		return err
	}
	out := betweenTags.ReplaceAllString(buf.String(), ">&#32;<")
	if _, err := writer.WriteString(out); err != nil {
		return ctx.OrigError(err, nil)
	}
	return nil
}
