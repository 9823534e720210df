package blockhelper

import (
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Definition declares a wrap helper in a YAML, JSON or TOML file:
//
//	helpers:
//	  - name: callout
//	    wrap: '<aside class="callout {{kind}}">{{body}}</aside>'
//	    empty: '<aside class="callout"></aside>'
//
// {{body}} expands to the captured block output; {{name}} and {{0}} expand to
// keyword and positional arguments, HTML-escaped. Placeholders without a
// matching argument expand to nothing.
type Definition struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Wrap        string `json:"wrap,omitempty" yaml:"wrap,omitempty" toml:"wrap"`
	Empty       string `json:"empty,omitempty" yaml:"empty,omitempty" toml:"empty"`
	NeverRender bool   `json:"never_render,omitempty" yaml:"never_render,omitempty" toml:"never_render"`
	Within      string `json:"within,omitempty" yaml:"within,omitempty" toml:"within"`
	Sanitize    bool   `json:"sanitize,omitempty" yaml:"sanitize,omitempty" toml:"sanitize"`
}

type definitionDocument struct {
	Helpers []Definition `json:"helpers" yaml:"helpers" toml:"helpers"`
}

// LoadFS walks fsys and parses every helper definition file. Helper names must
// be unique across files.
func LoadFS(fsys fs.FS) ([]Definition, error) {
	if fsys == nil {
		return nil, nil
	}

	var (
		defs []Definition
		seen = make(map[string]string)
	)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("blockhelper: read %s: %w", path, err)
		}
		doc, err := parseDefinitions(data, path)
		if err != nil {
			return err
		}

		for _, def := range doc.Helpers {
			name := normalize(def.Name)
			if name == "" {
				return fmt.Errorf("blockhelper: file %s defines a helper without a name", path)
			}
			if prev, exists := seen[name]; exists {
				return fmt.Errorf("%w: %q (files %s and %s)", ErrDuplicateHelper, name, prev, path)
			}
			seen[name] = path
			def.Name = name
			defs = append(defs, def)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// RegisterDefinitions registers a WrapHelper type for each definition.
func (r *Registry) RegisterDefinitions(defs ...Definition) error {
	for _, def := range defs {
		policy := RenderAlways
		if def.NeverRender {
			policy = RenderNever
		}
		err := r.Register(def.Name, Descriptor{
			Factory: func(base Base, args Args) (Object, error) {
				return &WrapHelper{Base: base, def: def, args: args}, nil
			},
			Render: policy,
			Within: def.Within,
			Doc:    def.Description,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WrapHelper is the helper type backing declarative definitions.
type WrapHelper struct {
	Base
	def  Definition
	args Args
}

// Arg returns a keyword argument formatted as a string.
func (w *WrapHelper) Arg(key string) string {
	return w.args.StringOr(-1, key, "")
}

// Display expands the definition's wrap template around body.
func (w *WrapHelper) Display(body Body) (string, error) {
	if !body.Given() {
		return w.expand(w.def.Empty, ""), nil
	}
	content := body.String()
	if w.def.Sanitize {
		content = w.Sanitize(content)
	}
	if w.def.Wrap == "" {
		return content, nil
	}
	return w.expand(w.def.Wrap, content), nil
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+)\s*\}\}`)

func (w *WrapHelper) expand(template, body string) string {
	if template == "" {
		return ""
	}
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		if key == "body" {
			return body
		}
		idx := -1
		if n, err := strconv.Atoi(key); err == nil {
			idx, key = n, ""
		}
		return html.EscapeString(w.args.StringOr(idx, key, ""))
	})
}

func parseDefinitions(data []byte, path string) (definitionDocument, error) {
	var doc definitionDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("blockhelper: parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("blockhelper: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("blockhelper: parse %s: %w", path, err)
		}
	}
	return doc, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	default:
		return false
	}
}
