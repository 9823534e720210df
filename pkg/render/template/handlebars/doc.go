// Package handlebars renders Handlebars templates with block helpers backed by
// a blockhelper.Registry.
//
// Every registered helper name becomes a block helper. The helper object is
// the block's context, so its methods resolve as plain expressions, and hash
// arguments are passed to the helper constructor as keyword arguments:
//
//	registry := blockhelper.New()
//	stock.Register(registry)
//
//	engine, err := handlebars.New(handlebars.WithRegistry(registry))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := engine.RenderString(`{{#panel title="Hello"}}<p>{{Title}}</p>{{/panel}}`, nil)
//
// Helpers are block-form only. Positional arguments are rejected by the
// template runtime; use hash arguments instead.
package handlebars
