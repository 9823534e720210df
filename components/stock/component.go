package stock

import (
	"net/http"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

// Component bundles the stock helpers, their configuration and the catalog
// handler.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Register adds the stock helpers to reg.
func (c *Component) Register(reg *blockhelper.Registry) error {
	if c == nil {
		return Register(reg)
	}
	return registerWithOptions(reg, c.opts)
}

// Handler returns a net/http handler listing the helpers registered on reg.
func (c *Component) Handler(reg *blockhelper.Registry) http.Handler {
	if c == nil {
		return CatalogHandler(reg)
	}
	return CatalogHandlerWithOptions(reg, c.opts)
}

// RegisterRoutes registers the catalog handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string, reg *blockhelper.Registry) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath, reg)
	}
	return RegisterRoutesWithOptions(mux, basePath, reg, c.opts)
}
