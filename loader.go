package blockhelpers

import (
	"fmt"
	"io/fs"

	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
)

// LoadHelpers parses every YAML, JSON or TOML helper definition in fsys and
// registers it on reg.
func LoadHelpers(reg *Registry, fsys fs.FS) error {
	if reg == nil {
		return fmt.Errorf("blockhelpers: missing registry")
	}
	defs, err := blockhelper.LoadFS(fsys)
	if err != nil {
		return err
	}
	if err := reg.RegisterDefinitions(defs...); err != nil {
		return fmt.Errorf("blockhelpers: register definitions: %w", err)
	}
	return nil
}
