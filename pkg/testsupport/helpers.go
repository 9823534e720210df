package testsupport

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

// FixtureFuncs returns the ambient helper functions the fixture helpers rely
// on. Pass them to view.WithHelperFuncs.
func FixtureFuncs() map[string]any {
	return map[string]any{
		"yoghurt": func() string { return "Yoghurt" },
		"cheese":  func() string { return "Cheese" },
	}
}

// RegisterFixtures registers the fixture helper types used across the
// protocol, template adapter and feature tests.
func RegisterFixtures(reg *blockhelper.Registry) {
	reg.MustRegister("test_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &GreetingHelper{Base: base}, nil
		},
	})
	reg.MustRegister("food_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &FoodHelper{Base: base}, nil
		},
	})
	reg.MustRegister("joke_helper", blockhelper.Descriptor{Factory: NewJokeHelper})
	reg.MustRegister("compat_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &CompatHelper{Base: base}, nil
		},
	})
	reg.MustRegister("test_helper_surround", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &SurroundHelper{Base: base}, nil
		},
	})
	reg.MustRegister("test_helper_with_args", blockhelper.Descriptor{Factory: NewArgsHelper})
	reg.MustRegister("parent_test_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &ParentHelper{Base: base}, nil
		},
	})
	reg.MustRegister("child_test_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &ChildHelper{ParentHelper: ParentHelper{Base: base}}, nil
		},
	})
	reg.MustRegister("displaying_child_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &DisplayingChildHelper{DisplayingParentHelper: DisplayingParentHelper{ParentHelper: ParentHelper{Base: base}}}, nil
		},
	})
	reg.MustRegister("nil_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &NilHelper{Base: base}, nil
		},
	})
	reg.MustRegister("outer_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &OuterHelper{Base: base}, nil
		},
	})
	reg.MustRegister("inner_helper", blockhelper.Descriptor{
		Factory: NewInnerHelper,
		Within:  "outer_helper",
	})
	reg.MustRegister("stamper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &StampHelper{Base: base}, nil
		},
	})
	reg.MustRegister("never_render_helper", blockhelper.Descriptor{
		Factory: func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
			return &GreetingHelper{Base: base}, nil
		},
		Render: blockhelper.RenderNever,
	})
}

// GreetingHelper exposes a single method to its block.
type GreetingHelper struct {
	blockhelper.Base
}

func (h *GreetingHelper) Hello() string {
	return "Hi there"
}

// FoodHelper reaches ambient helpers both implicitly and through Helper().
type FoodHelper struct {
	blockhelper.Base
}

func (f *FoodHelper) Yog() (string, error) {
	yoghurt, err := f.CallString("yoghurt")
	if err != nil {
		return "", err
	}
	return prefix(yoghurt, 3), nil
}

func (f *FoodHelper) JellyInDiv() string {
	return f.ContentTag("div", "jelly", nil)
}

func (f *FoodHelper) Cheese() (string, error) {
	cheese, err := f.Helper().CallString("cheese")
	if err != nil {
		return "", err
	}
	return prefix(cheese, 4), nil
}

// LabelTag shadows the ambient helper and forwards a shortened name to it.
func (f *FoodHelper) LabelTag(text string) string {
	return f.Helper().LabelTag(prefix(text, 2))
}

// CheckCapture captures block and emits it twice.
func (f *FoodHelper) CheckCapture(block func() error) error {
	captured, err := f.Capture(block)
	if err != nil {
		return err
	}
	for range 2 {
		f.Concat(captured)
	}
	return nil
}

// JokeHelper uses an ambient helper while being constructed.
type JokeHelper struct {
	blockhelper.Base
	joke string
}

func NewJokeHelper(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
	h := &JokeHelper{Base: base}
	h.joke = h.Truncate("What's the different between half a duck?", 6)
	return h, nil
}

func (h *JokeHelper) Joke() string {
	return h.joke
}

// StampHelper has methods that write to the output while its block renders.
type StampHelper struct {
	blockhelper.Base
}

// Stamp emits a marker where it is called.
func (s *StampHelper) Stamp() string {
	s.Concat("X")
	return ""
}

// Echo captures text and emits it twice.
func (s *StampHelper) Echo(text string) (string, error) {
	captured, err := s.Capture(func() error {
		s.Concat(text)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.Concat(captured)
	s.Concat(captured)
	return "", nil
}

// Twice captures its own output and returns it doubled instead of emitting.
func (s *StampHelper) Twice() string {
	captured, err := s.Capture(func() error {
		s.Concat("Y")
		return nil
	})
	if err != nil {
		return ""
	}
	return captured + captured
}

type CompatHelper struct {
	blockhelper.Base
}

func (h *CompatHelper) Display(body blockhelper.Body) (string, error) {
	return "Before..." + body.String() + "...after", nil
}

type SurroundHelper struct {
	blockhelper.Base
}

func (h *SurroundHelper) Display(body blockhelper.Body) (string, error) {
	if !body.Given() {
		return "This is nil!", nil
	}
	return "\n<p>Before</p>\n" + body.String() + "\n<p>After</p>\n", nil
}

// ArgsHelper takes an id and a class, positionally or as keywords.
type ArgsHelper struct {
	blockhelper.Base
	id    string
	klass string
}

func NewArgsHelper(base blockhelper.Base, args blockhelper.Args) (blockhelper.Object, error) {
	id, err := args.String(0, "id")
	if err != nil {
		return nil, err
	}
	klass, err := args.String(1, "klass")
	if err != nil {
		return nil, err
	}
	return &ArgsHelper{Base: base, id: id, klass: klass}, nil
}

func (h *ArgsHelper) Hello() string {
	return fmt.Sprintf(`<p class="%s" id="%s">Hello</p>`, h.klass, h.id)
}

type ParentHelper struct {
	blockhelper.Base
}

func (h *ParentHelper) Hello() string {
	return "hello"
}

// ChildHelper inherits Hello from ParentHelper.
type ChildHelper struct {
	ParentHelper
}

type DisplayingParentHelper struct {
	ParentHelper
}

func (h *DisplayingParentHelper) Display(body blockhelper.Body) (string, error) {
	return "before..." + body.String() + "...after", nil
}

// DisplayingChildHelper inherits Display from DisplayingParentHelper.
type DisplayingChildHelper struct {
	DisplayingParentHelper
}

// NilHelper defines Display but never returns anything.
type NilHelper struct {
	blockhelper.Base
}

func (h *NilHelper) Display(blockhelper.Body) (string, error) {
	return "", nil
}

type OuterHelper struct {
	blockhelper.Base
}

func (o *OuterHelper) Egg() string {
	return "bad egg " + inspect(o.Outer())
}

func (o *OuterHelper) Display(body blockhelper.Body) (string, error) {
	return "Outer " + body.String(), nil
}

// InnerHelper derives its egg from the outer helper at construction time.
type InnerHelper struct {
	blockhelper.Base
	outer *OuterHelper
	egg   string
}

func NewInnerHelper(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
	outer, ok := base.Outer().(*OuterHelper)
	if !ok {
		return nil, fmt.Errorf("inner_helper: outer helper is %T, want *OuterHelper", base.Outer())
	}
	return &InnerHelper{Base: base, outer: outer, egg: outer.Egg()}, nil
}

func (i *InnerHelper) Egg() string {
	return i.egg + " " + strings.ToUpper(i.outer.Egg())
}

// Parent returns the outer helper captured at construction.
func (i *InnerHelper) Parent() *OuterHelper {
	return i.outer
}

func (i *InnerHelper) Display(body blockhelper.Body) (string, error) {
	return "Inner " + body.String(), nil
}

func inspect(obj blockhelper.Object) string {
	if obj == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", obj)
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
