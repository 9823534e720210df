package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/render/template/gotemplate"
	"github.com/goliatone/go-blockhelpers/pkg/testsupport"
	"github.com/goliatone/go-blockhelpers/pkg/view"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_RenderTemplateWithBlockHelpers(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("article", map[string]any{"title": "Block helpers"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "article.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_IgnoresLegacyOptions(t *testing.T) {
	engine, err := gotemplate.New(
		gotemplate.WithFS(embeddedTemplates),
		gotemplate.WithGoTemplateOptions(),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := engine.RenderString("Hello {{ name }}", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "Hello Ada" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGoTemplateEngine_Hooks(t *testing.T) {
	engine := newEngine(t)
	engine.RegisterPreHook(func(ctx *gotemplatepkg.HookContext) error {
		ctx.Metadata["seen"] = ctx.TemplateName
		ctx.Data = map[string]any{"name": "Grace"}
		return nil
	})
	engine.RegisterPostHook(func(ctx *gotemplatepkg.HookContext) (string, error) {
		return fmt.Sprintf("<%s>%s", ctx.Metadata["seen"], ctx.Output), nil
	})

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := "<hello.tpl>Hello Grace!\n"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}

	engine.RegisterPostHook(func(*gotemplatepkg.HookContext) (string, error) {
		return "", fmt.Errorf("rejected")
	}, 10)
	if _, err := engine.RenderString("{{ name }}", nil); err == nil || !strings.Contains(err.Error(), "post-hook failed") {
		t.Fatalf("expected post-hook failure, got %v", err)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	registry := blockhelper.New()
	testsupport.RegisterFixtures(registry)

	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithRegistry(registry),
		gotemplate.WithViewOptions(view.WithHelperFuncs(testsupport.FixtureFuncs())),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
