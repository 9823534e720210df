// Package template defines the renderer-agnostic template contract shared by
// the block helper adapters. Concrete engines live in sub-packages:
// gotemplate (pongo2) and handlebars (raymond).
package template
