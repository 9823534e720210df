package stock

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

const (
	PanelName = "panel"
	ListName  = "list"
)

// Register adds the panel and list helpers to reg.
func Register(reg *blockhelper.Registry, fns ...OptionFn) error {
	opts := NewOptions(fns...)
	return registerWithOptions(reg, opts)
}

func registerWithOptions(reg *blockhelper.Registry, opts Options) error {
	if reg == nil {
		return fmt.Errorf("stock: missing registry")
	}

	if err := reg.Register(opts.Prefix+PanelName, blockhelper.Descriptor{
		Factory: newPanelFactory(opts),
		Doc:     "Wraps its block in a titled panel. Args: title, kind.",
	}); err != nil {
		return fmt.Errorf("stock: register panel: %w", err)
	}
	if err := reg.Register(opts.Prefix+ListName, blockhelper.Descriptor{
		Factory: newListFactory(opts),
		Doc:     "Renders a list from its block or from the items argument. Args: items, ordered.",
	}); err != nil {
		return fmt.Errorf("stock: register list: %w", err)
	}
	return nil
}

// Panel wraps content in a titled container.
//
//	{% blockhelper "panel" "Billing" kind="warning" as p %}<p>{{ p.Title }}</p>{% endblockhelper %}
type Panel struct {
	blockhelper.Base
	title string
	kind  string
	class string
}

func newPanelFactory(opts Options) blockhelper.Factory {
	return func(base blockhelper.Base, args blockhelper.Args) (blockhelper.Object, error) {
		return &Panel{
			Base:  base,
			title: args.StringOr(0, "title", ""),
			kind:  strings.TrimSpace(args.StringOr(1, "kind", "")),
			class: opts.PanelClass,
		}, nil
	}
}

func (p *Panel) Title() string {
	return p.title
}

func (p *Panel) Kind() string {
	return p.kind
}

func (p *Panel) Display(body blockhelper.Body) (string, error) {
	classes := p.class
	if p.kind != "" {
		classes += " " + p.class + "-" + p.kind
	}

	var inner strings.Builder
	if p.title != "" {
		inner.WriteString(p.ContentTag("div", html.EscapeString(p.title), map[string]string{"class": p.class + "-title"}))
	}
	if body.Given() {
		inner.WriteString(p.ContentTag("div", body.String(), map[string]string{"class": p.class + "-body"}))
	}
	return p.ContentTag("div", inner.String(), map[string]string{"class": classes}), nil
}

// List renders its block, or the items argument when the block is blank,
// inside a ul (or ol when ordered).
//
//	{% blockhelper "list" as l %}{{ l.Item("one")|safe }}{{ l.Item("two")|safe }}{% endblockhelper %}
//	{% blockhelper "list" items=names ordered=true noblock %}
type List struct {
	blockhelper.Base
	items   []string
	ordered bool
	class   string
}

func newListFactory(opts Options) blockhelper.Factory {
	return func(base blockhelper.Base, args blockhelper.Args) (blockhelper.Object, error) {
		items, err := listItems(args)
		if err != nil {
			return nil, err
		}
		return &List{
			Base:    base,
			items:   items,
			ordered: truthy(args.Keywords()["ordered"]),
			class:   opts.ListClass,
		}, nil
	}
}

// Item renders one escaped list item.
func (l *List) Item(text string) string {
	return l.ContentTag("li", html.EscapeString(text), nil)
}

// Items returns the items passed as arguments.
func (l *List) Items() []string {
	return append([]string{}, l.items...)
}

func (l *List) Display(body blockhelper.Body) (string, error) {
	content := body.String()
	if strings.TrimSpace(content) == "" {
		var b strings.Builder
		for _, item := range l.items {
			b.WriteString(l.Item(item))
		}
		content = b.String()
	}
	if content == "" {
		return "", nil
	}

	tag := "ul"
	if l.ordered {
		tag = "ol"
	}
	return l.ContentTag(tag, content, map[string]string{"class": l.class}), nil
}

func listItems(args blockhelper.Args) ([]string, error) {
	value, ok := args.Value(0, "items")
	if !ok || value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: list items must be a list or a comma separated string, got %T", blockhelper.ErrArgs, value)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}
