package stock

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Entry describes one registered helper in the catalog.
type Entry struct {
	Name   string `json:"name"`
	Render string `json:"render"`
	Within string `json:"within,omitempty"`
	Doc    string `json:"doc,omitempty"`
}

type catalogResponse struct {
	Data []Entry `json:"data"`
}

// Catalog returns an entry per helper registered on reg, sorted by name.
func Catalog(reg *blockhelper.Registry) []Entry {
	if reg == nil {
		return nil
	}
	descriptors := reg.Descriptors()
	out := make([]Entry, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, Entry{
			Name:   desc.Name,
			Render: desc.Render.String(),
			Within: desc.Within,
			Doc:    desc.Doc,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search filters entries by name. Prefix matches sort before substring
// matches; ties sort by name.
func Search(entries []Entry, query string, limit int, opts Options) []Entry {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchAll {
			if len(entries) <= limit {
				return append([]Entry{}, entries...)
			}
			return append([]Entry{}, entries[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedEntry, 0, len(entries))
	for _, entry := range entries {
		lowerName := strings.ToLower(entry.Name)
		if !strings.Contains(lowerName, q) {
			continue
		}
		matches = append(matches, matchedEntry{
			entry:    entry,
			isPrefix: strings.HasPrefix(lowerName, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].entry.Name < matches[j].entry.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Entry, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.entry)
	}
	return out
}

type matchedEntry struct {
	entry    Entry
	isPrefix bool
}

// CatalogHandler builds a catalog handler with default options plus any
// overrides.
func CatalogHandler(reg *blockhelper.Registry, fns ...OptionFn) http.Handler {
	return CatalogHandlerWithOptions(reg, NewOptions(fns...))
}

// CatalogHandlerWithOptions builds the catalog handler from a pre-constructed
// Options value. The catalog is read per request, so helpers registered later
// show up.
func CatalogHandlerWithOptions(reg *blockhelper.Registry, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		query := r.URL.Query().Get(opts.SearchParam)
		limit := parseInt(r.URL.Query().Get(opts.LimitParam))

		results := Search(Catalog(reg), query, limit, opts)
		if results == nil {
			results = []Entry{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(catalogResponse{Data: results})
	})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
