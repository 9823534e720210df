package handlebars

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
	gotemplatepkg "github.com/goliatone/go-template"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/render/template"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

// ErrEmitDuringBlock is returned when a helper method emits output while its
// block renders. Raymond renders a block to a string, so such output has no
// position in the template and is rejected instead of being misplaced.
// Methods should return their markup, or capture it and return the result.
var ErrEmitDuringBlock = errors.New("handlebars: helper emitted output while its block was rendering")

const (
	stateKey = "blockhelpers"
	outerKey = "blockhelper_outer"
)

// Option configures the handlebars engine.
type Option func(*config)

type config struct {
	templates   fs.FS
	extension   string
	registry    *blockhelper.Registry
	viewOptions []view.Option
	hooks       *gotemplatepkg.HookManager
	logger      *zap.Logger
}

// WithFS sets the file system RenderTemplate loads from.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".hbs" template extension.
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

// WithRegistry sets the registry whose helpers become block helpers.
func WithRegistry(registry *blockhelper.Registry) Option {
	return func(cfg *config) {
		cfg.registry = registry
	}
}

// WithViewOptions configures the view.Context created for every render.
func WithViewOptions(options ...view.Option) Option {
	return func(cfg *config) {
		cfg.viewOptions = append(cfg.viewOptions, options...)
	}
}

// WithHooks sets the go-template hook manager run around every render.
func WithHooks(hooks *gotemplatepkg.HookManager) Option {
	return func(cfg *config) {
		cfg.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Engine renders Handlebars templates. Parsed templates are cached by source
// and carry one helper per registry name.
type Engine struct {
	mu sync.RWMutex

	cache       map[string]*raymond.Template
	filters     map[string]func(input any, param any) (any, error)
	globals     map[string]any
	templates   fs.FS
	extension   string
	registry    *blockhelper.Registry
	viewOptions []view.Option
	hooks       *gotemplatepkg.HookManager
	logger      *zap.Logger
}

var _ template.TemplateRenderer = (*Engine)(nil)

type renderState struct {
	view     *view.Context
	registry *blockhelper.Registry
}

// New creates a handlebars engine.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".hbs"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
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

	return &Engine{
		cache:       make(map[string]*raymond.Template),
		filters:     make(map[string]func(input any, param any) (any, error)),
		globals:     make(map[string]any),
		templates:   cfg.templates,
		extension:   cfg.extension,
		registry:    cfg.registry,
		viewOptions: cfg.viewOptions,
		hooks:       cfg.hooks,
		logger:      cfg.logger,
	}, nil
}

// Render treats name as inline source when it contains a mustache, otherwise
// as a template name.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate loads name from the configured file system and renders it.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil {
		return "", errors.New("handlebars: engine is nil")
	}
	if e.templates == nil {
		return "", errors.New("handlebars: no template file system configured")
	}

	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}
	source, err := fs.ReadFile(e.templates, path)
	if err != nil {
		return "", fmt.Errorf("handlebars: load template %q: %w", path, err)
	}

	run := template.NewHookRun(e.hooks, path, string(source), data)
	if err := run.Pre(); err != nil {
		return "", fmt.Errorf("handlebars: template %q: %w", path, err)
	}
	rendered, err := e.exec(run.Template, run.Data)
	if err != nil {
		e.logger.Debug("template render failed", zap.String("template", path), zap.Error(err))
		return "", fmt.Errorf("handlebars: execute template %q: %w", path, err)
	}
	if rendered, err = run.Post(rendered); err != nil {
		return "", fmt.Errorf("handlebars: template %q: %w", path, err)
	}
	return write(rendered, out)
}

// RenderString renders inline template source.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil {
		return "", errors.New("handlebars: engine is nil")
	}
	run := template.NewHookRun(e.hooks, "", templateContent, data)
	if err := run.Pre(); err != nil {
		return "", fmt.Errorf("handlebars: template string: %w", err)
	}
	rendered, err := e.exec(run.Template, run.Data)
	if err != nil {
		e.logger.Debug("template string render failed", zap.Error(err))
		return "", fmt.Errorf("handlebars: execute template string: %w", err)
	}
	if rendered, err = run.Post(rendered); err != nil {
		return "", fmt.Errorf("handlebars: template string: %w", err)
	}
	return write(rendered, out)
}

// RegisterFilter exposes fn as an inline helper: {{name value}} or
// {{name value param="x"}}. Templates parsed before the call do not see it.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("handlebars: filter name and function required")
	}
	if _, exists := e.registry.Descriptor(name); exists {
		return fmt.Errorf("handlebars: filter %q collides with a block helper", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.filters[name]; exists {
		return fmt.Errorf("handlebars: filter %q already exists", name)
	}
	e.filters[name] = fn
	e.cache = make(map[string]*raymond.Template)
	return nil
}

// GlobalContext merges data into the values every render sees. Render data
// wins on key conflicts.
func (e *Engine) GlobalContext(data any) error {
	if e == nil {
		return errors.New("handlebars: engine is nil")
	}
	if data == nil {
		return nil
	}
	values, err := toMap(data)
	if err != nil {
		return fmt.Errorf("handlebars: global context: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for key, value := range values {
		e.globals[key] = value
	}
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

// ClearCache drops parsed templates, e.g. after registering new helpers.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

func (e *Engine) exec(source string, data any) (string, error) {
	tpl, err := e.getTemplate(source)
	if err != nil {
		return "", err
	}

	ctx, err := e.renderContext(data)
	if err != nil {
		return "", err
	}

	v, err := view.New(nil, e.viewOptions...)
	if err != nil {
		return "", fmt.Errorf("create view: %w", err)
	}
	frame := raymond.NewDataFrame()
	frame.Set(stateKey, &renderState{view: v, registry: e.registry})

	return tpl.ExecWith(ctx, frame)
}

func (e *Engine) renderContext(data any) (any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.globals) == 0 {
		if data == nil {
			return map[string]any{}, nil
		}
		return data, nil
	}

	merged := make(map[string]any, len(e.globals))
	for key, value := range e.globals {
		merged[key] = value
	}
	if data == nil {
		return merged, nil
	}
	values, err := toMap(data)
	if err != nil {
		return nil, fmt.Errorf("convert data: %w", err)
	}
	for key, value := range values {
		merged[key] = value
	}
	return merged, nil
}

func (e *Engine) getTemplate(source string) (*raymond.Template, error) {
	e.mu.RLock()
	if tpl, ok := e.cache[source]; ok {
		e.mu.RUnlock()
		return tpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tpl, ok := e.cache[source]; ok {
		return tpl, nil
	}

	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	for _, name := range e.registry.Names() {
		tpl.RegisterHelper(name, e.blockHelper(name))
	}
	for name, fn := range e.filters {
		tpl.RegisterHelper(name, filterHelper(fn))
	}

	e.cache[source] = tpl
	return tpl, nil
}

// blockHelper adapts one registry entry to a raymond block helper. Errors are
// raised with panic, which raymond recovers into the Exec error.
func (e *Engine) blockHelper(name string) func(options *raymond.Options) raymond.SafeString {
	return func(options *raymond.Options) raymond.SafeString {
		state, ok := options.DataFrame().Get(stateKey).(*renderState)
		if !ok || state == nil {
			panic(fmt.Errorf("handlebars: %s: no helper registry attached to this render", name))
		}

		call := blockhelper.Call{
			Name: name,
			Args: blockhelper.Args{Keyword: options.Hash()},
		}
		if outer, ok := options.DataFrame().Get(outerKey).(blockhelper.Object); ok {
			call.Outer = outer
		}
		call.Block = func(obj blockhelper.Object) error {
			frame := options.NewDataFrame()
			frame.Set(outerKey, obj)

			var body string
			stray, err := state.view.Capture(func() error {
				body = options.FnCtxData(obj, frame)
				return nil
			})
			if err != nil {
				return err
			}
			if stray != "" {
				return fmt.Errorf("%w: inside %s: %q", ErrEmitDuringBlock, name, stray)
			}
			state.view.Concat(body)
			return nil
		}

		out, err := state.view.Capture(func() error {
			_, err := state.registry.Invoke(state.view, call)
			return err
		})
		if err != nil {
			panic(err)
		}
		return raymond.SafeString(out)
	}
}

func filterHelper(fn func(input any, param any) (any, error)) func(input any, options *raymond.Options) any {
	return func(input any, options *raymond.Options) any {
		result, err := fn(input, options.HashProp("param"))
		if err != nil {
			panic(err)
		}
		return result
	}
}

func toMap(data any) (map[string]any, error) {
	if m, ok := data.(map[string]any); ok {
		return m, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func write(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}
