package view

import (
	"errors"
	"strings"
	"testing"
)

func TestContentTagSortsAttributes(t *testing.T) {
	ctx := newContext(t, nil)

	got := ctx.ContentTag("p", "Hello", map[string]string{"id": "hello", "class": "there"})
	want := `<p class="there" id="hello">Hello</p>`
	if got != want {
		t.Fatalf("content tag mismatch\nwant: %q\n got: %q", want, got)
	}

	if got := ctx.ContentTag("div", "jelly", nil); got != "<div>jelly</div>" {
		t.Fatalf("unexpected div %q", got)
	}
}

func TestLabelTagHumanizesName(t *testing.T) {
	ctx := newContext(t, nil)

	if got := ctx.LabelTag("hi"); got != `<label for="hi">Hi</label>` {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ctx.LabelTag("author_id"); got != `<label for="author_id">Author</label>` {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ctx.LabelTag("email", "E-mail"); got != `<label for="email">E-mail</label>` {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestTagHelpersEscapeAttributes(t *testing.T) {
	ctx := newContext(t, nil)

	got := ctx.LabelTag(`a" onclick="x`)
	want := `<label for="a&#34; onclick=&#34;x">A&#34; onclick=&#34;x</label>`
	if got != want {
		t.Fatalf("label mismatch\nwant: %q\n got: %q", want, got)
	}

	got = ctx.LabelTag("note", "<b>Note</b>")
	if want := `<label for="note">&lt;b&gt;Note&lt;/b&gt;</label>`; got != want {
		t.Fatalf("caption mismatch\nwant: %q\n got: %q", want, got)
	}

	got = ctx.ContentTag("span", "<em>kept</em>", map[string]string{
		"title":       `"><script>`,
		`x onload="y`: "dropped",
		"data-tone":   "note",
	})
	want = `<span data-tone="note" title="&#34;&gt;&lt;script&gt;"><em>kept</em></span>`
	if got != want {
		t.Fatalf("content tag mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestTruncate(t *testing.T) {
	ctx := newContext(t, nil)

	cases := []struct {
		text     string
		length   int
		omission []string
		want     string
	}{
		{"What's the different between half a duck?", 6, nil, "Wha..."},
		{"short", 10, nil, "short"},
		{"exactly", 7, nil, "exactly"},
		{"héllo wörld", 7, []string{"…"}, "héllo …"},
		{"abcdef", 2, nil, "..."},
	}

	for _, tc := range cases {
		if got := ctx.Truncate(tc.text, tc.length, tc.omission...); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.text, tc.length, got, tc.want)
		}
	}
}

func TestCallAmbientHelpers(t *testing.T) {
	ctx := newContext(t, nil,
		WithHelperFunc("yoghurt", func() string { return "Yoghurt" }),
		WithHelperFunc("repeat", func(s string, n int) string { return strings.Repeat(s, n) }),
		WithHelperFunc("join", func(sep string, parts ...string) string { return strings.Join(parts, sep) }),
		WithHelperFunc("fail", func() (string, error) { return "", errors.New("nope") }),
	)

	if got, err := ctx.CallString("yoghurt"); err != nil || got != "Yoghurt" {
		t.Fatalf("yoghurt = %q, %v", got, err)
	}
	if got, err := ctx.CallString("repeat", "ab", 2); err != nil || got != "abab" {
		t.Fatalf("repeat = %q, %v", got, err)
	}
	if got, err := ctx.CallString("join", "-", "a", "b", "c"); err != nil || got != "a-b-c" {
		t.Fatalf("join = %q, %v", got, err)
	}
	if _, err := ctx.Call("fail"); err == nil || err.Error() != "nope" {
		t.Fatalf("expected helper error to propagate, got %v", err)
	}
	if _, err := ctx.Call("missing"); !errors.Is(err, ErrUnknownFunc) {
		t.Fatalf("expected ErrUnknownFunc, got %v", err)
	}
	if _, err := ctx.Call("repeat", "ab"); err == nil {
		t.Fatalf("expected arity error")
	}
	if !ctx.HasFunc("join") || len(ctx.Funcs()) != 4 {
		t.Fatalf("unexpected funcs %v", ctx.Funcs())
	}
}

func TestNewRejectsNonCallableHelper(t *testing.T) {
	if _, err := New(nil, WithHelperFunc("bad", "not a func")); err == nil {
		t.Fatalf("expected error for non-callable helper")
	}
}

func TestSanitizeStripsScripts(t *testing.T) {
	ctx := newContext(t, nil)

	got := ctx.Sanitize(`<p class="note">Hi<script>alert(1)</script></p>`)
	if got != `<p class="note">Hi</p>` {
		t.Fatalf("unexpected sanitized output %q", got)
	}
	if ctx.Sanitize("   ") != "" {
		t.Fatalf("expected blank input to sanitize to empty string")
	}
}
