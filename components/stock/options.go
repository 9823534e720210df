package stock

import "net/http"

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchAll  EmptySearchMode = "all"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	Prefix     string
	PanelClass string
	ListClass  string

	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		PanelClass:      "panel",
		ListClass:       "list",
		RoutePath:       "/api/helpers",
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    50,
		MaxLimit:        200,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.PanelClass == "" {
		opts.PanelClass = "panel"
	}
	if opts.ListClass == "" {
		opts.ListClass = "list"
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 200
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/helpers"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	return opts
}

// WithPrefix namespaces the stock helper names, e.g. "ui_" registers
// "ui_panel" and "ui_list".
func WithPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Prefix = prefix
	}
}

func WithPanelClass(class string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PanelClass = class
	}
}

func WithListClass(class string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ListClass = class
	}
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
