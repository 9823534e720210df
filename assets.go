package blockhelpers

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/*.hbs templates/helpers/*.yaml
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the example templates (page.tpl for the pongo2
// engine, page.hbs for handlebars) so callers and the CLI can render something
// without a template directory.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// EmbeddedHelpers exposes the declarative helper definitions used by the
// example templates.
func EmbeddedHelpers() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates/helpers")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
