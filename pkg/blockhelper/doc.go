// Package blockhelper implements the block helper invocation protocol.
//
// A helper type is a struct embedding Base, registered under a name with a
// Factory. Invoking the name constructs a fresh helper object wired to the
// enclosing view.Context, yields it to the block (if any) while capturing the
// block's output, lets the object transform the captured text through the
// optional Displayer capability, and emits the result via view.Context.Concat.
//
//	reg := blockhelper.New()
//	reg.MustRegister("panel", blockhelper.Descriptor{
//		Factory: func(base blockhelper.Base, args blockhelper.Args) (blockhelper.Object, error) {
//			return &Panel{Base: base}, nil
//		},
//	})
//	_, err := reg.Invoke(v, blockhelper.Call{Name: "panel", Block: func(obj blockhelper.Object) error {
//		v.Concat("body")
//		return nil
//	}})
//
// Methods missing on a helper type resolve to the ambient helpers promoted
// from Base, and Base.Helper returns the enclosing context itself.
package blockhelper
