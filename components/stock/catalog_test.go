package stock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

type handlerResponse struct {
	Data []Entry `json:"data"`
}

func catalogRegistry(t *testing.T) *blockhelper.Registry {
	t.Helper()
	reg := blockhelper.New()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	factory := func(base blockhelper.Base, _ blockhelper.Args) (blockhelper.Object, error) {
		return &Panel{Base: base}, nil
	}
	reg.MustRegister("panel_footer", blockhelper.Descriptor{Factory: factory, Within: "panel"})
	reg.MustRegister("hidden", blockhelper.Descriptor{Factory: factory, Render: blockhelper.RenderNever})
	return reg
}

func serve(t *testing.T, h http.Handler, method, target string) (*http.Response, handlerResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	var payload handlerResponse
	if method == http.MethodGet && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return res, payload
}

func TestCatalogHandler_EmptyQueryListsAll(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t))

	res, payload := serve(t, h, http.MethodGet, "/api/helpers")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	if len(payload.Data) != 4 {
		t.Fatalf("expected 4 entries, got %#v", payload.Data)
	}
	if payload.Data[0].Name != "hidden" || payload.Data[0].Render != blockhelper.RenderNever.String() {
		t.Fatalf("unexpected first entry: %#v", payload.Data[0])
	}
}

func TestCatalogHandler_EmptySearchNone(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t), WithEmptySearchMode(EmptySearchNone))

	_, payload := serve(t, h, http.MethodGet, "/api/helpers")
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestCatalogHandler_SearchPrefersPrefixAndClampsLimit(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t), WithMaxLimit(2))

	_, payload := serve(t, h, http.MethodGet, "/api/helpers?q=PANEL&limit=10")
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 results, got %#v", payload.Data)
	}
	if payload.Data[0].Name != "panel" || payload.Data[1].Name != "panel_footer" {
		t.Fatalf("unexpected order: %#v", payload.Data)
	}
	if payload.Data[1].Within != "panel" {
		t.Fatalf("expected within to be reported, got %#v", payload.Data[1])
	}
}

func TestCatalogHandler_CustomQueryParams(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t), WithSearchParam("search"), WithLimitParam("l"))

	_, payload := serve(t, h, http.MethodGet, "/api/helpers?search=st&l=5")
	if len(payload.Data) != 1 || payload.Data[0].Name != "list" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestCatalogHandler_GuardRejects(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t), WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	res, _ := serve(t, h, http.MethodGet, "/api/helpers")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.StatusCode)
	}
}

func TestCatalogHandler_MethodNotAllowed(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t))

	res, _ := serve(t, h, http.MethodPost, "/api/helpers")
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", res.StatusCode)
	}
	if allow := res.Header.Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestCatalogHandler_HeadHasNoBody(t *testing.T) {
	h := CatalogHandler(catalogRegistry(t))

	req := httptest.NewRequest(http.MethodHead, "/api/helpers", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestClampLimit(t *testing.T) {
	opts := NewOptions(WithDefaultLimit(5), WithMaxLimit(10))
	cases := map[int]int{-1: 0, 0: 5, 7: 7, 50: 10}
	for in, want := range cases {
		if got := clampLimit(in, opts); got != want {
			t.Fatalf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
