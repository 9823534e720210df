package blockhelper

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Factory constructs a helper object. base is already wired to the enclosing
// context, the outer helper and the registry.
type Factory func(base Base, args Args) (Object, error)

// RenderPolicy decides whether a helper type renders at all.
type RenderPolicy int

const (
	// RenderAlways is the default policy.
	RenderAlways RenderPolicy = iota
	// RenderNever skips construction, block evaluation and emission.
	RenderNever
)

func (p RenderPolicy) String() string {
	switch p {
	case RenderNever:
		return "never"
	default:
		return "always"
	}
}

// Descriptor declares one helper type.
type Descriptor struct {
	Name    string
	Factory Factory
	Render  RenderPolicy
	// Within names the outer helper type a nested helper must be invoked from.
	Within string
	// Doc is a one-line description surfaced by tooling.
	Doc string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for invocation tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps helper names to descriptors. It is safe for concurrent use;
// populate it at startup and share it across renders.
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]Descriptor
	logger  *zap.Logger
}

// New creates an empty registry.
func New(options ...Option) *Registry {
	r := &Registry{
		helpers: make(map[string]Descriptor),
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Clone returns a copy of the registry so callers can add helpers without
// affecting the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New(WithLogger(r.logger))
	for name, descriptor := range r.helpers {
		cloned.helpers[name] = descriptor
	}
	return cloned
}

// Register associates a descriptor with name. Existing entries are replaced.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("blockhelper: helper name is required")
	}
	if descriptor.Factory == nil {
		return fmt.Errorf("blockhelper: factory for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	descriptor.Within = normalize(descriptor.Within)
	r.helpers[name] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.helpers[normalize(name)]
	return descriptor, ok
}

// Names returns the sorted registered helper names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Descriptors returns every descriptor ordered by name.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Names()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if descriptor, ok := r.Descriptor(name); ok {
			out = append(out, descriptor)
		}
	}
	return out
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
