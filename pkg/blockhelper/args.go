package blockhelper

import (
	"fmt"
	"strconv"
	"strings"
)

// Kwargs marks keyword arguments when passed as the last value to NewArgs.
type Kwargs map[string]any

// Args are the construction arguments of one invocation. Template adapters
// fill Positional from bare arguments and Keyword from key=value pairs.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// NewArgs builds Args from positional values; a trailing Kwargs becomes the
// keyword set.
func NewArgs(values ...any) Args {
	var args Args
	if n := len(values); n > 0 {
		if kw, ok := values[n-1].(Kwargs); ok {
			values = values[:n-1]
			args.Keyword = make(map[string]any, len(kw))
			for key, value := range kw {
				args.Keyword[strings.TrimSpace(key)] = value
			}
		}
	}
	if len(values) > 0 {
		args.Positional = append([]any(nil), values...)
	}
	return args
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// Value returns the positional argument at idx, falling back to the keyword
// argument named key. Pass idx < 0 to look up keywords only.
func (a Args) Value(idx int, key string) (any, bool) {
	if idx >= 0 && idx < len(a.Positional) {
		return a.Positional[idx], true
	}
	if key != "" && a.Keyword != nil {
		value, ok := a.Keyword[key]
		return value, ok
	}
	return nil, false
}

// String resolves a required string argument.
func (a Args) String(idx int, key string) (string, error) {
	value, ok := a.Value(idx, key)
	if !ok || value == nil {
		return "", fmt.Errorf("%w: missing argument %s", ErrArgs, describe(idx, key))
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// StringOr resolves an optional string argument.
func (a Args) StringOr(idx int, key, fallback string) string {
	if _, ok := a.Value(idx, key); !ok {
		return fallback
	}
	s, err := a.String(idx, key)
	if err != nil {
		return fallback
	}
	return s
}

// Int resolves a required integer argument. Numeric strings are accepted.
func (a Args) Int(idx int, key string) (int, error) {
	value, ok := a.Value(idx, key)
	if !ok || value == nil {
		return 0, fmt.Errorf("%w: missing argument %s", ErrArgs, describe(idx, key))
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: argument %s: %v", ErrArgs, describe(idx, key), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: argument %s must be an integer, got %T", ErrArgs, describe(idx, key), value)
	}
}

// Keywords returns a copy of the keyword arguments.
func (a Args) Keywords() map[string]any {
	if len(a.Keyword) == 0 {
		return nil
	}
	out := make(map[string]any, len(a.Keyword))
	for key, value := range a.Keyword {
		out[key] = value
	}
	return out
}

func describe(idx int, key string) string {
	switch {
	case idx >= 0 && key != "":
		return fmt.Sprintf("%d (%q)", idx, key)
	case key != "":
		return strconv.Quote(key)
	default:
		return strconv.Itoa(idx)
	}
}
