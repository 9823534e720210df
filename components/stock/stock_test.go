package stock_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goliatone/go-blockhelpers/components/stock"
	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/testsupport"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

func invoke(t *testing.T, reg *blockhelper.Registry, call blockhelper.Call) string {
	t.Helper()
	var out bytes.Buffer
	v, err := view.New(&out)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if _, err := reg.Invoke(v, call); err != nil {
		t.Fatalf("invoke %s: %v", call.Name, err)
	}
	return out.String()
}

func newRegistry(t *testing.T, fns ...stock.OptionFn) *blockhelper.Registry {
	t.Helper()
	reg := blockhelper.New()
	if err := stock.Register(reg, fns...); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestPanel_WrapsBlock(t *testing.T) {
	reg := newRegistry(t)

	var title string
	out := invoke(t, reg, blockhelper.Call{
		Name: stock.PanelName,
		Args: blockhelper.NewArgs("Billing & tax", blockhelper.Kwargs{"kind": "warning"}),
		Block: func(obj blockhelper.Object) error {
			panel := obj.(*stock.Panel)
			title = panel.Title()
			panel.Concat("<p>Due</p>")
			return nil
		},
	})

	if title != "Billing & tax" {
		t.Fatalf("unexpected title %q", title)
	}
	testsupport.MatchHTML(t, `<div class="panel panel-warning">
		<div class="panel-title">Billing &amp; tax</div>
		<div class="panel-body"><p>Due</p></div>
	</div>`, out)
}

func TestPanel_WithoutBlockRendersTitleOnly(t *testing.T) {
	reg := newRegistry(t, stock.WithPanelClass("card"))

	out := invoke(t, reg, blockhelper.Call{
		Name: stock.PanelName,
		Args: blockhelper.NewArgs(blockhelper.Kwargs{"title": "Empty"}),
	})

	testsupport.MatchHTML(t, `<div class="card"><div class="card-title">Empty</div></div>`, out)
}

func TestList_FromBlockAndItems(t *testing.T) {
	reg := newRegistry(t, stock.WithPrefix("ui_"))

	fromBlock := invoke(t, reg, blockhelper.Call{
		Name: "ui_list",
		Block: func(obj blockhelper.Object) error {
			list := obj.(*stock.List)
			list.Concat(list.Item("one"))
			list.Concat(list.Item("<two>"))
			return nil
		},
	})
	testsupport.MatchHTML(t, `<ul class="list"><li>one</li><li>&lt;two&gt;</li></ul>`, fromBlock)

	fromItems := invoke(t, reg, blockhelper.Call{
		Name: "ui_list",
		Args: blockhelper.NewArgs(blockhelper.Kwargs{"items": []any{"a", 2}, "ordered": true}),
	})
	testsupport.MatchHTML(t, `<ol class="list"><li>a</li><li>2</li></ol>`, fromItems)

	fromString := invoke(t, reg, blockhelper.Call{
		Name: "ui_list",
		Args: blockhelper.NewArgs("x, y,,z"),
	})
	testsupport.MatchHTML(t, `<ul class="list"><li>x</li><li>y</li><li>z</li></ul>`, fromString)
}

func TestList_EmptyWithoutBlockEmitsNothing(t *testing.T) {
	reg := newRegistry(t)

	out := invoke(t, reg, blockhelper.Call{Name: stock.ListName})
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestList_RejectsUnsupportedItems(t *testing.T) {
	reg := newRegistry(t)
	v, err := view.New(nil)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	_, err = reg.Invoke(v, blockhelper.Call{
		Name: stock.ListName,
		Args: blockhelper.NewArgs(blockhelper.Kwargs{"items": 42}),
	})
	if !errors.Is(err, blockhelper.ErrArgs) {
		t.Fatalf("expected ErrArgs, got %v", err)
	}
}

func TestRegister_MissingRegistry(t *testing.T) {
	if err := stock.Register(nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestComponent_OptionsAndRegister(t *testing.T) {
	component := stock.New(stock.WithPrefix("x_"), stock.WithListClass(""))

	opts := component.Options()
	if opts.ListClass != "list" {
		t.Fatalf("expected default list class, got %q", opts.ListClass)
	}

	reg := blockhelper.New()
	if err := component.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "x_list" || names[1] != "x_panel" {
		t.Fatalf("unexpected names %v", names)
	}

	var nilComponent *stock.Component
	if got := nilComponent.Options(); got.RoutePath != "/api/helpers" {
		t.Fatalf("unexpected default route %q", got.RoutePath)
	}
}
