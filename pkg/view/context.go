package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrConcatSignature is returned when a concat override does not match one
	// of the supported shapes.
	ErrConcatSignature = errors.New("view: unsupported concat signature")
	// ErrUnknownFunc is returned by Call when no ambient helper is registered
	// under the requested name.
	ErrUnknownFunc = errors.New("view: unknown helper function")
)

// ConcatFunc replaces the default emission behaviour. Overrides usually do
// some bookkeeping and then call Context.Emit to reach the active sink.
type ConcatFunc func(c *Context, content string)

// Option configures a Context before construction.
type Option func(*config)

type config struct {
	concat any
	funcs  map[string]any
	policy *bluemonday.Policy
}

// WithConcat installs a concat override. Accepted shapes are
// func(*Context, string), func(*Context, string, any) and
// func(*Context, string, ...any); the legacy second argument is always passed
// as nil.
func WithConcat(fn any) Option {
	return func(cfg *config) {
		cfg.concat = fn
	}
}

// WithHelperFunc registers an ambient helper function reachable through Call.
func WithHelperFunc(name string, fn any) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any)
		}
		cfg.funcs[name] = fn
	}
}

// WithHelperFuncs registers several ambient helper functions at once.
func WithHelperFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			WithHelperFunc(name, fn)(cfg)
		}
	}
}

// WithSanitizer overrides the bluemonday policy used by Sanitize.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// Context is the enclosing rendering context of one render pass. It is not
// safe for concurrent use.
type Context struct {
	out    io.Writer
	sinks  []*strings.Builder
	concat ConcatFunc
	funcs  map[string]any
	policy *bluemonday.Policy
	err    error
}

// New constructs a Context emitting into out. A nil writer discards anything
// emitted outside of a capture.
func New(out io.Writer, options ...Option) (*Context, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	concat, err := resolveConcat(cfg.concat)
	if err != nil {
		return nil, err
	}

	funcs := make(map[string]any, len(cfg.funcs))
	for name, fn := range cfg.funcs {
		if !isCallable(fn) {
			return nil, fmt.Errorf("view: helper function %q is not callable (%T)", name, fn)
		}
		funcs[name] = fn
	}

	return &Context{
		out:    out,
		concat: concat,
		funcs:  funcs,
		policy: cfg.policy,
	}, nil
}

// Concat emits content into the active sink. The optional legacy argument is
// accepted for compatibility with two-argument callers and ignored.
func (c *Context) Concat(content string, legacy ...any) {
	_ = legacy
	if c.concat != nil {
		c.concat(c, content)
		return
	}
	c.Emit(content)
}

// Emit writes content to the active sink, bypassing any concat override.
func (c *Context) Emit(content string) {
	if c.err != nil || content == "" {
		return
	}
	if n := len(c.sinks); n > 0 {
		c.sinks[n-1].WriteString(content)
		return
	}
	if c.out == nil {
		return
	}
	if _, err := io.WriteString(c.out, content); err != nil {
		c.err = fmt.Errorf("view: write output: %w", err)
	}
}

// Capture runs fn with a fresh buffer on top of the sink stack and returns
// everything emitted while it ran. The previous sink is restored when fn
// returns, including when it fails or panics.
func (c *Context) Capture(fn func() error) (string, error) {
	buf := &strings.Builder{}
	c.sinks = append(c.sinks, buf)
	defer func() {
		c.sinks = c.sinks[:len(c.sinks)-1]
	}()

	if fn != nil {
		if err := fn(); err != nil {
			return "", err
		}
	}
	if c.err != nil {
		return "", c.err
	}
	return buf.String(), nil
}

// Depth reports how many captures are currently active.
func (c *Context) Depth() int {
	return len(c.sinks)
}

// Err returns the first write error recorded against the base writer.
func (c *Context) Err() error {
	return c.err
}

func resolveConcat(fn any) (ConcatFunc, error) {
	switch f := fn.(type) {
	case nil:
		return nil, nil
	case ConcatFunc:
		return f, nil
	case func(*Context, string):
		return f, nil
	case func(*Context, string, any):
		return func(c *Context, content string) {
			f(c, content, nil)
		}, nil
	case func(*Context, string, ...any):
		return func(c *Context, content string) {
			f(c, content)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrConcatSignature, fn)
	}
}
