package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	betweenTagsGap = regexp.MustCompile(`>\s+<`)
)

// NormalizeHTML collapses whitespace runs to a single space, drops whitespace
// between adjacent tags and trims the result, so markup rendered from indented
// templates compares equal to its compact form.
func NormalizeHTML(markup string) string {
	out := whitespaceRun.ReplaceAllString(markup, " ")
	out = betweenTagsGap.ReplaceAllString(out, "><")
	return strings.TrimSpace(out)
}

// MatchHTML fails the test when got and want differ after NormalizeHTML.
func MatchHTML(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(NormalizeHTML(want), NormalizeHTML(got)); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
