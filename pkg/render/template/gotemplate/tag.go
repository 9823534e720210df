package gotemplate

import (
	"errors"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

const (
	blockHelperTag    = "blockhelper"
	blockHelperEndTag = "endblockhelper"
	noBlockKeyword    = "noblock"
	outerKey          = "blockhelper_outer"
)

var (
	registerTagOnce sync.Once
	registerTagErr  error
)

type renderState struct {
	view     *view.Context
	registry *blockhelper.Registry
}

// sinkWriter routes template text into the view's active sink, so text and
// anything helpers emit while the template runs share one ordered stream.
type sinkWriter struct {
	view *view.Context
}

func (w sinkWriter) Write(p []byte) (int, error) {
	w.view.Emit(string(p))
	return len(p), w.view.Err()
}

func (w sinkWriter) WriteString(s string) (int, error) {
	w.view.Emit(s)
	return len(s), w.view.Err()
}

// registerBlockHelperTag installs the tag once per process; pongo2 tags are
// global.
//
//	{% blockhelper "food_helper" as r %}{{ r.Yog }}{% endblockhelper %}
//	{% blockhelper "panel" "Title" kind="info" %}...{% endblockhelper %}
//	{% blockhelper "test_helper" noblock as e %}{{ e.Hello }}
func registerBlockHelperTag() error {
	registerTagOnce.Do(func() {
		registerTagErr = pongo2.RegisterTag(blockHelperTag, tagBlockHelperParser)
	})
	return registerTagErr
}

type tagBlockHelperNode struct {
	position *pongo2.Token
	name     pongo2.IEvaluator
	args     []pongo2.IEvaluator
	kwargs   map[string]pongo2.IEvaluator
	alias    string
	wrapper  *pongo2.NodeWrapper
}

func (node *tagBlockHelperNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	state, ok := ctx.Public[stateKey].(*renderState)
	if !ok || state == nil {
		return ctx.Error("blockhelper: no helper registry attached to this render", node.position)
	}

	call, perr := node.call(ctx)
	if perr != nil {
		return perr
	}

	if node.wrapper != nil {
		call.Block = func(obj blockhelper.Object) error {
			child := pongo2.NewChildExecutionContext(ctx)
			child.Private[outerKey] = obj
			if node.alias != "" {
				child.Private[node.alias] = obj
			}

			if perr := node.wrapper.Execute(child, sinkWriter{state.view}); perr != nil {
				return perr
			}
			return nil
		}
	}

	var obj blockhelper.Object
	out, err := state.view.Capture(func() error {
		var err error
		obj, err = state.registry.Invoke(state.view, call)
		return err
	})
	if err != nil {
		var tplErr *pongo2.Error
		if errors.As(err, &tplErr) {
			return tplErr
		}
		return ctx.OrigError(err, node.position)
	}

	if node.wrapper == nil && node.alias != "" && obj != nil {
		ctx.Private[node.alias] = obj
	}

	if _, err := writer.WriteString(out); err != nil {
		return ctx.OrigError(err, node.position)
	}
	return nil
}

func (node *tagBlockHelperNode) call(ctx *pongo2.ExecutionContext) (blockhelper.Call, *pongo2.Error) {
	var call blockhelper.Call

	name, perr := node.name.Evaluate(ctx)
	if perr != nil {
		return call, perr
	}
	call.Name = name.String()

	for _, expr := range node.args {
		value, perr := expr.Evaluate(ctx)
		if perr != nil {
			return call, perr
		}
		call.Args.Positional = append(call.Args.Positional, value.Interface())
	}
	if len(node.kwargs) > 0 {
		call.Args.Keyword = make(map[string]any, len(node.kwargs))
		for key, expr := range node.kwargs {
			value, perr := expr.Evaluate(ctx)
			if perr != nil {
				return call, perr
			}
			call.Args.Keyword[key] = value.Interface()
		}
	}

	if outer, ok := ctx.Private[outerKey].(blockhelper.Object); ok {
		call.Outer = outer
	}
	return call, nil
}

func tagBlockHelperParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &tagBlockHelperNode{
		position: start,
		kwargs:   make(map[string]pongo2.IEvaluator),
	}

	if arguments.Count() == 0 {
		return nil, arguments.Error("Tag 'blockhelper' requires a helper name.", nil)
	}

	nameExpr, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.name = nameExpr

	noBlock := false
	for arguments.Remaining() > 0 {
		switch {
		case arguments.Match(pongo2.TokenKeyword, "as") != nil:
			aliasToken := arguments.MatchType(pongo2.TokenIdentifier)
			if aliasToken == nil {
				return nil, arguments.Error("Expected an identifier after 'as'.", nil)
			}
			node.alias = aliasToken.Val
			if arguments.Remaining() > 0 {
				return nil, arguments.Error("'as <name>' must be the last argument.", nil)
			}
		case arguments.Peek(pongo2.TokenIdentifier, noBlockKeyword) != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") == nil:
			arguments.Consume()
			noBlock = true
		case arguments.PeekType(pongo2.TokenIdentifier) != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") != nil:
			keyToken := arguments.MatchType(pongo2.TokenIdentifier)
			arguments.Consume()
			valueExpr, err := arguments.ParseExpression()
			if err != nil {
				return nil, err
			}
			node.kwargs[keyToken.Val] = valueExpr
		default:
			valueExpr, err := arguments.ParseExpression()
			if err != nil {
				return nil, err
			}
			node.args = append(node.args, valueExpr)
		}
	}

	if noBlock {
		return node, nil
	}

	wrapper, endargs, err := doc.WrapUntilTag(blockHelperEndTag)
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	node.wrapper = wrapper
	return node, nil
}
