package stock

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/admin"); got != "/admin/api/helpers" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin"); got != "/admin/api/helpers" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/admin/", WithRoutePath("helpers")); got != "/admin/helpers" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandler(t *testing.T) {
	muxes := map[string]Mux{
		"servemux": http.NewServeMux(),
		"chi":      chi.NewRouter(),
	}

	for name, mux := range muxes {
		t.Run(name, func(t *testing.T) {
			pattern, err := RegisterRoutes(mux, "/admin", catalogRegistry(t))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pattern != "/admin/api/helpers" {
				t.Fatalf("unexpected registered pattern: %q", pattern)
			}

			req := httptest.NewRequest(http.MethodGet, pattern+"?q=list&limit=1", nil)
			rec := httptest.NewRecorder()
			mux.(http.Handler).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
		})
	}
}

func TestRegisterRoutes_Validation(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/", blockhelper.New()); err == nil {
		t.Fatalf("expected error for nil mux")
	}
	if _, err := RegisterRoutes(http.NewServeMux(), "/", nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}
