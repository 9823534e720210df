package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/render/template"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

// ErrReservedKey is returned when render data uses a key the engine sets on
// every render.
var ErrReservedKey = errors.New("gotemplate: reserved context key")

const (
	// ViewKey exposes the render's view.Context to templates, e.g.
	// {{ view.Truncate(title, 20) }}.
	ViewKey = "view"

	// stateKey carries the registry for the blockhelper tag. Like ViewKey it
	// may not appear in render data.
	stateKey = "blockhelpers"
)

// Option configures the pongo2 engine before construction.
type Option func(*config)

type config struct {
	templates   fs.FS
	extension   string
	registry    *blockhelper.Registry
	viewOptions []view.Option
	hooks       *gotemplatepkg.HookManager
	logger      *zap.Logger
}

// WithFS sets the file system templates are loaded from.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithRegistry sets the block helper registry the blockhelper tag resolves
// names against.
func WithRegistry(registry *blockhelper.Registry) Option {
	return func(cfg *config) {
		cfg.registry = registry
	}
}

// WithViewOptions configures the view.Context created for every render, for
// example ambient helper functions or a concat override.
func WithViewOptions(options ...view.Option) Option {
	return func(cfg *config) {
		cfg.viewOptions = append(cfg.viewOptions, options...)
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHooks sets the go-template hook manager run around every render.
// Pre hooks may replace the render data, and the source of inline renders;
// post hooks rewrite the output.
func WithHooks(hooks *gotemplatepkg.HookManager) Option {
	return func(cfg *config) {
		cfg.hooks = hooks
	}
}

// WithGoTemplateOptions keeps option lists written for a go-template engine
// compiling. The options configure that engine's internals and are ignored.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) Option {
	return func(*config) {}
}

// Engine renders pongo2 templates. Every render gets a fresh view.Context, and
// the {% blockhelper %} tag invokes helpers from the configured registry.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	compiled  map[string]*pongo2.Template
	extension string
	registry  *blockhelper.Registry
	viewOpts  []view.Option
	hooks     *gotemplatepkg.HookManager
	logger    *zap.Logger
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New creates an engine. A template file system is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: template fs.FS is required")
	}
	if cfg.registry == nil {
		cfg.registry = blockhelper.New()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.hooks == nil {
		cfg.hooks = gotemplatepkg.NewHooksManager()
	}
	if err := registerBlockHelperTag(); err != nil {
		return nil, fmt.Errorf("gotemplate: register blockhelper tag: %w", err)
	}

	set := pongo2.NewSet("blockhelpers", pongo2.NewFSLoader(cfg.templates))
	set.Globals = make(pongo2.Context)

	return &Engine{
		set:       set,
		compiled:  make(map[string]*pongo2.Template),
		extension: cfg.extension,
		registry:  cfg.registry,
		viewOpts:  cfg.viewOptions,
		hooks:     cfg.hooks,
		logger:    cfg.logger,
	}, nil
}

// Render treats name as inline source when it contains template markup,
// otherwise as a template name.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate loads name, adding the configured extension when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}

	tpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	run := template.NewHookRun(e.hooks, path, "", data)
	if err := run.Pre(); err != nil {
		return "", fmt.Errorf("gotemplate: template %q: %w", path, err)
	}
	rendered, err := e.execute(tpl, run.Data)
	if err != nil {
		e.logger.Debug("template render failed", zap.String("template", path), zap.Error(err))
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	if rendered, err = run.Post(rendered); err != nil {
		return "", fmt.Errorf("gotemplate: template %q: %w", path, err)
	}
	return write(rendered, out)
}

// RenderString renders inline template source. It is parsed on every call.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	run := template.NewHookRun(e.hooks, "", templateContent, data)
	if err := run.Pre(); err != nil {
		return "", fmt.Errorf("gotemplate: template string: %w", err)
	}
	tpl, err := e.set.FromString(run.Template)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := e.execute(tpl, run.Data)
	if err != nil {
		e.logger.Debug("template string render failed", zap.Error(err))
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	if rendered, err = run.Post(rendered); err != nil {
		return "", fmt.Errorf("gotemplate: template string: %w", err)
	}
	return write(rendered, out)
}

// RegisterFilter registers a pongo2 filter. Filters are process wide, so a
// name already taken by any engine is rejected.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}

	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every render sees. Render data
// wins on key conflicts.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	values, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}
	if err := checkReserved(values); err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.set.Globals.Update(values)
	return nil
}

// RegisterPreHook adds a hook run before every render.
func (e *Engine) RegisterPreHook(hook gotemplatepkg.PreHook, priority ...int) {
	e.hooks.AddPreHook(hook, priority...)
}

// RegisterPostHook adds a hook run on every rendered output.
func (e *Engine) RegisterPostHook(hook gotemplatepkg.PostHook, priority ...int) {
	e.hooks.AddPostHook(hook, priority...)
}

// Registry returns the block helper registry used by the engine.
func (e *Engine) Registry() *blockhelper.Registry {
	return e.registry
}

func (e *Engine) execute(tpl *pongo2.Template, data any) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}
	if err := checkReserved(ctx); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	v, err := view.New(&buf, e.viewOpts...)
	if err != nil {
		return "", fmt.Errorf("create view: %w", err)
	}
	ctx[ViewKey] = v
	ctx[stateKey] = &renderState{view: v, registry: e.registry}

	// Unbuffered so template text reaches the view in order with helper
	// output; buf is discarded on error.
	e.mu.RLock()
	err = tpl.ExecuteWriterUnbuffered(ctx, sinkWriter{v})
	e.mu.RUnlock()
	if err != nil {
		return "", unwrapRenderError(err)
	}
	if err := v.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tpl, ok := e.compiled[path]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tpl, ok := e.compiled[path]; ok {
		return tpl, nil
	}
	tpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.compiled[path] = tpl
	return tpl, nil
}

// renderError keeps pongo2's positional message and exposes the cause to
// errors.Is, so sentinels such as blockhelper.ErrUnknownHelper survive.
type renderError struct {
	err *pongo2.Error
}

func (e renderError) Error() string {
	return e.err.Error()
}

func (e renderError) Unwrap() error {
	return e.err.OrigError
}

func unwrapRenderError(err error) error {
	var tplErr *pongo2.Error
	if errors.As(err, &tplErr) && tplErr.OrigError != nil {
		return renderError{tplErr}
	}
	return err
}

func checkReserved(ctx pongo2.Context) error {
	for _, key := range []string{ViewKey, stateKey} {
		if _, taken := ctx[key]; taken {
			return fmt.Errorf("%w: %q", ErrReservedKey, key)
		}
	}
	return nil
}

// toContext copies maps so the view and state keys never leak into caller
// data. Other values are flattened through JSON.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return copyContext(v), nil
	case map[string]any:
		return copyContext(v), nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func copyContext(in map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = value
		}
	}
	return out
}

func write(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}
