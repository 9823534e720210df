package blockhelpers

import (
	"io/fs"
	"testing"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/testsupport"
)

var pageData = map[string]any{
	"title": "Groceries",
	"items": []string{"milk", "eggs"},
}

func TestEmbeddedTemplatesContainExamples(t *testing.T) {
	for _, name := range []string{"page.tpl", "page.hbs", "helpers/callout.yaml"} {
		if _, err := fs.ReadFile(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
	}
}

func TestDefaultRegistryIncludesStockAndDeclarativeHelpers(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	want := []string{"callout", "draft", "list", "panel"}
	if diff := testsupport.CompareGolden(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	draft, ok := reg.Descriptor("draft")
	if !ok || draft.Render != blockhelper.RenderNever {
		t.Fatalf("expected draft to never render, got %+v", draft)
	}
}

func TestNewEngineRendersEmbeddedPage(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	engine, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderTemplate("page", pageData)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	testsupport.MatchHTML(t, `<article>
		<div class="panel panel-info">
			<div class="panel-title">Groceries</div>
			<div class="panel-body">
				<p>Groceries lists 2 items.</p>
				<ol class="list"><li>milk</li><li>eggs</li></ol>
			</div>
		</div>
		<aside class="callout callout-note"><p>Block helpers wrap what they are given.</p></aside>
	</article>`, out)
}

func TestNewHandlebarsEngineRendersEmbeddedPage(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	engine, err := NewHandlebarsEngine(reg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderTemplate("page", pageData)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	testsupport.MatchHTML(t, `<article>
		<div class="panel panel-info">
			<div class="panel-title">Groceries</div>
			<div class="panel-body"><p>Groceries is ready.</p></div>
		</div>
		<ol class="list"><li>milk</li><li>eggs</li></ol>
		<aside class="callout callout-note"><p>Block helpers wrap what they are given.</p></aside>
	</article>`, out)
}

func TestCalloutEscapesTone(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	engine, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	cases := map[string]struct {
		tpl  string
		data map[string]any
		want string
	}{
		"missing tone": {
			tpl:  `{% blockhelper "callout" %}hi{% endblockhelper %}`,
			want: `<aside class="callout callout-">hi</aside>`,
		},
		"hostile tone": {
			tpl:  `{% blockhelper "callout" tone=tone %}hi{% endblockhelper %}`,
			data: map[string]any{"tone": `x" onmouseover="alert(1)`},
			want: `<aside class="callout callout-x&#34; onmouseover=&#34;alert(1)">hi</aside>`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := engine.RenderString(tc.tpl, tc.data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if out != tc.want {
				t.Fatalf("unexpected output\nwant: %q\n got: %q", tc.want, out)
			}
		})
	}
}

func TestLoadHelpersRequiresRegistry(t *testing.T) {
	if err := LoadHelpers(nil, EmbeddedHelpers()); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}
