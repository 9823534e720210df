package blockhelper

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockhelpers/pkg/view"
)

// Call describes one helper invocation.
type Call struct {
	Name  string
	Args  Args
	Outer Object
	// Block is nil when the helper is invoked without a body.
	Block Block
}

// InvokeFunc is the generated entry point for a single helper type.
type InvokeFunc func(v *view.Context, block Block, args ...any) (Object, error)

// Func returns the invocation function for the named helper. The name is
// resolved on every call so later registrations are honoured.
func (r *Registry) Func(name string) InvokeFunc {
	return func(v *view.Context, block Block, args ...any) (Object, error) {
		return r.Invoke(v, Call{Name: name, Args: NewArgs(args...), Block: block})
	}
}

// Invoke runs the invocation protocol for call against v.
//
// Never-render helpers return (nil, nil) without constructing anything or
// evaluating the block. Otherwise the helper object is returned, even when it
// emitted nothing, so callers can keep using it. Errors raised by the factory,
// the block or Display are returned unchanged.
func (r *Registry) Invoke(v *view.Context, call Call) (Object, error) {
	if v == nil {
		return nil, fmt.Errorf("blockhelper: invoke %q: view context is nil", call.Name)
	}

	descriptor, ok := r.Descriptor(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHelper, call.Name)
	}

	logger := r.logger.With(zap.String("helper", descriptor.Name))

	if descriptor.Render == RenderNever {
		logger.Debug("block helper skipped", zap.Stringer("render", descriptor.Render))
		return nil, nil
	}

	if descriptor.Within != "" {
		if call.Outer == nil || call.Outer.helperBase().name != descriptor.Within {
			return nil, fmt.Errorf("%w: %q belongs to %q", ErrNotNested, descriptor.Name, descriptor.Within)
		}
	}

	base := Base{
		view:     v,
		outer:    call.Outer,
		name:     descriptor.Name,
		registry: r,
	}
	obj, err := descriptor.Factory(base, call.Args)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("blockhelper: factory for %q returned nil", descriptor.Name)
	}
	wired := obj.helperBase()
	if wired.view == nil {
		*wired = base
	}
	wired.self = obj

	displayer, hasDisplay := obj.(Displayer)
	logger.Debug("block helper invoked",
		zap.Bool("block", call.Block != nil),
		zap.Bool("display", hasDisplay),
		zap.Int("depth", v.Depth()),
	)

	if call.Block == nil {
		if !hasDisplay {
			return obj, nil
		}
		out, err := displayer.Display(NoBody())
		if err != nil {
			return obj, err
		}
		emit(v, out)
		return obj, v.Err()
	}

	captured, err := v.Capture(func() error {
		return call.Block(obj)
	})
	if err != nil {
		return obj, err
	}

	out := captured
	if hasDisplay {
		out, err = displayer.Display(NewBody(captured))
		if err != nil {
			return obj, err
		}
	}
	emit(v, out)
	return obj, v.Err()
}

func emit(v *view.Context, out string) {
	if out == "" {
		return
	}
	v.Concat(out)
}
