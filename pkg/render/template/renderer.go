package template

import (
	"io"
)

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract. Both block helper adapters satisfy it, so callers such as the CLI
// can swap engines without touching helper registration.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
