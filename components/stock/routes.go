package stock

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for the catalog route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the catalog handler under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, reg *blockhelper.Registry, fns ...OptionFn) (string, error) {
	opts := NewOptions(fns...)
	return RegisterRoutesWithOptions(mux, basePath, reg, opts)
}

// RegisterRoutesWithOptions registers the catalog handler under basePath using
// a pre-built Options value.
func RegisterRoutesWithOptions(mux Mux, basePath string, reg *blockhelper.Registry, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("stock: missing mux")
	}
	if reg == nil {
		return "", fmt.Errorf("stock: missing registry")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.RoutePath)
	mux.Handle(pattern, CatalogHandlerWithOptions(reg, opts))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
