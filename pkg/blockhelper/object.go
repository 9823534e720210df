package blockhelper

import (
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

// Object is satisfied by every helper type through its embedded Base.
type Object interface {
	helperBase() *Base
}

// Displayer is the optional capability that transforms a helper's captured
// output before it is emitted. An empty result emits nothing.
type Displayer interface {
	Display(body Body) (string, error)
}

// Block is the template body yielded the freshly constructed helper object.
// Anything it emits through the view is captured.
type Block func(obj Object) error

// Body carries captured block output, or the absence of a block.
type Body struct {
	content string
	given   bool
}

// NoBody is the body passed to Display when the helper was invoked without a
// block.
func NoBody() Body {
	return Body{}
}

// NewBody wraps captured block output.
func NewBody(content string) Body {
	return Body{content: content, given: true}
}

// Given reports whether a block was supplied.
func (b Body) Given() bool {
	return b.given
}

func (b Body) String() string {
	return b.content
}

// Base wires a helper object to its enclosing context. Embed it by value in
// every helper type; the Factory receives a Base that is already wired so
// constructors can use ambient helpers.
type Base struct {
	view     *view.Context
	outer    Object
	self     Object
	name     string
	registry *Registry
}

func (b *Base) helperBase() *Base {
	return b
}

// Helper returns the enclosing rendering context.
func (b *Base) Helper() *view.Context {
	return b.view
}

// Outer returns the helper object this one was invoked from, or nil.
func (b *Base) Outer() Object {
	return b.outer
}

// Name returns the registered name the object was created under.
func (b *Base) Name() string {
	return b.name
}

// Concat emits content into the enclosing context's active sink.
func (b *Base) Concat(content string, legacy ...any) {
	b.view.Concat(content, legacy...)
}

// Capture evaluates fn and returns what it emitted instead of emitting it.
func (b *Base) Capture(fn func() error) (string, error) {
	return b.view.Capture(fn)
}

// ContentTag delegates to view.Context.ContentTag.
func (b *Base) ContentTag(tag, content string, attrs map[string]string) string {
	return b.view.ContentTag(tag, content, attrs)
}

// LabelTag delegates to view.Context.LabelTag.
func (b *Base) LabelTag(name string, caption ...string) string {
	return b.view.LabelTag(name, caption...)
}

// Truncate delegates to view.Context.Truncate.
func (b *Base) Truncate(text string, length int, omission ...string) string {
	return b.view.Truncate(text, length, omission...)
}

// Sanitize delegates to view.Context.Sanitize.
func (b *Base) Sanitize(html string) string {
	return b.view.Sanitize(html)
}

// Call invokes an ambient helper function registered on the context.
func (b *Base) Call(name string, args ...any) (any, error) {
	return b.view.Call(name, args...)
}

// CallString invokes an ambient helper function and formats its result.
func (b *Base) CallString(name string, args ...any) (string, error) {
	return b.view.CallString(name, args...)
}

// Invoke runs a nested helper with the receiver as its outer helper.
func (b *Base) Invoke(name string, block Block, args ...any) (Object, error) {
	if b.registry == nil {
		return nil, ErrUnknownHelper
	}
	return b.registry.Invoke(b.view, Call{
		Name:  name,
		Args:  NewArgs(args...),
		Outer: b.self,
		Block: block,
	})
}
