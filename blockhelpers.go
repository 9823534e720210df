// Package blockhelpers is the top-level entry point for block helpers: small
// helper objects that template authors invoke around a block of markup.
//
// The protocol lives in pkg/blockhelper and the output sink in pkg/view; this
// package re-exports the common types and wires registries to the template
// engines:
//
//	reg, err := blockhelpers.DefaultRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := blockhelpers.NewEngine(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html, err := engine.RenderTemplate("page", map[string]any{"title": "Groceries"})
package blockhelpers

import (
	"fmt"
	"io"

	"github.com/goliatone/go-blockhelpers/components/stock"
	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/render/template/gotemplate"
	"github.com/goliatone/go-blockhelpers/pkg/render/template/handlebars"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

type (
	Object     = blockhelper.Object
	Base       = blockhelper.Base
	Body       = blockhelper.Body
	Args       = blockhelper.Args
	Kwargs     = blockhelper.Kwargs
	Block      = blockhelper.Block
	Call       = blockhelper.Call
	Displayer  = blockhelper.Displayer
	Descriptor = blockhelper.Descriptor
	Factory    = blockhelper.Factory
	Registry   = blockhelper.Registry
	Definition = blockhelper.Definition
)

// NewRegistry returns an empty helper registry.
func NewRegistry(options ...blockhelper.Option) *Registry {
	return blockhelper.New(options...)
}

// NewView creates a rendering context writing to out.
func NewView(out io.Writer, options ...view.Option) (*view.Context, error) {
	return view.New(out, options...)
}

// DefaultRegistry returns a registry holding the stock helpers and the
// embedded declarative helpers used by the example templates.
func DefaultRegistry(options ...blockhelper.Option) (*Registry, error) {
	reg := blockhelper.New(options...)
	if err := stock.Register(reg); err != nil {
		return nil, err
	}
	if err := LoadHelpers(reg, EmbeddedHelpers()); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewEngine builds a pongo2 engine bound to reg that loads the embedded
// templates unless options supply another source.
func NewEngine(reg *Registry, options ...gotemplate.Option) (*gotemplate.Engine, error) {
	base := []gotemplate.Option{
		gotemplate.WithFS(EmbeddedTemplates()),
		gotemplate.WithRegistry(reg),
	}
	engine, err := gotemplate.New(append(base, options...)...)
	if err != nil {
		return nil, fmt.Errorf("blockhelpers: %w", err)
	}
	return engine, nil
}

// NewHandlebarsEngine builds a handlebars engine bound to reg that loads the
// embedded templates unless options supply another source.
func NewHandlebarsEngine(reg *Registry, options ...handlebars.Option) (*handlebars.Engine, error) {
	base := []handlebars.Option{
		handlebars.WithFS(EmbeddedTemplates()),
		handlebars.WithRegistry(reg),
	}
	engine, err := handlebars.New(append(base, options...)...)
	if err != nil {
		return nil, fmt.Errorf("blockhelpers: %w", err)
	}
	return engine, nil
}
