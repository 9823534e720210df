package view

import (
	"fmt"
	"html"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultOmission is appended by Truncate when text is shortened.
const DefaultOmission = "..."

// ContentTag renders <tag attrs>content</tag>. Attribute values are escaped
// and emitted in key order; content is written as given.
func (c *Context) ContentTag(tag, content string, attrs map[string]string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return content
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if !validAttrName(key) {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, key, html.EscapeString(attrs[key]))
	}
	b.WriteString(">")
	b.WriteString(content)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

// LabelTag renders a label for the named field. The caption defaults to the
// humanized field name and is escaped.
func (c *Context) LabelTag(name string, caption ...string) string {
	text := humanize(name)
	if len(caption) > 0 && caption[0] != "" {
		text = caption[0]
	}
	return c.ContentTag("label", html.EscapeString(text), map[string]string{"for": strings.TrimSpace(name)})
}

// validAttrName rejects names that would break out of the attribute list.
func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`"'<>/=`, r)
	})
}

// Truncate shortens text to at most length runes, omission included.
func (c *Context) Truncate(text string, length int, omission ...string) string {
	omit := DefaultOmission
	if len(omission) > 0 {
		omit = omission[0]
	}
	if length < 0 || utf8.RuneCountInString(text) <= length {
		return text
	}

	stop := length - utf8.RuneCountInString(omit)
	if stop < 0 {
		stop = 0
	}
	runes := []rune(text)
	return string(runes[:stop]) + omit
}

// Call invokes the ambient helper function registered under name. Functions
// may return nothing, a value, or a value followed by an error.
func (c *Context) Call(name string, args ...any) (any, error) {
	fn, ok := c.funcs[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunc, name)
	}

	rv := reflect.ValueOf(fn)
	t := rv.Type()
	if !t.IsVariadic() && len(args) != t.NumIn() {
		return nil, fmt.Errorf("view: helper function %q expects %d arguments, got %d", name, t.NumIn(), len(args))
	}
	if t.IsVariadic() && len(args) < t.NumIn()-1 {
		return nil, fmt.Errorf("view: helper function %q expects at least %d arguments, got %d", name, t.NumIn()-1, len(args))
	}

	in := make([]reflect.Value, 0, len(args))
	for idx, arg := range args {
		target := argType(t, idx)
		value, err := convertArg(arg, target)
		if err != nil {
			return nil, fmt.Errorf("view: helper function %q argument %d: %w", name, idx, err)
		}
		in = append(in, value)
	}

	out := rv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := asError(out[0]); ok {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		if err, ok := asError(out[len(out)-1]); ok && err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

// CallString invokes an ambient helper function and formats its result.
func (c *Context) CallString(name string, args ...any) (string, error) {
	value, err := c.Call(name, args...)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}

// HasFunc reports whether an ambient helper function is registered.
func (c *Context) HasFunc(name string) bool {
	_, ok := c.funcs[strings.TrimSpace(name)]
	return ok
}

// Funcs returns the sorted names of the registered ambient helper functions.
func (c *Context) Funcs() []string {
	names := make([]string, 0, len(c.funcs))
	for name := range c.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func asError(v reflect.Value) (error, bool) {
	if !v.Type().Implements(errorType) {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, true
		}
	}
	return v.Interface().(error), true
}

func argType(t reflect.Type, idx int) reflect.Type {
	if t.IsVariadic() && idx >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(idx)
}

func convertArg(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(target), nil
	}
	value := reflect.ValueOf(arg)
	if value.Type().AssignableTo(target) {
		return value, nil
	}
	if value.Type().ConvertibleTo(target) && value.Kind() != reflect.String && target.Kind() != reflect.String {
		return value.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, target)
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func humanize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "_id")
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}
