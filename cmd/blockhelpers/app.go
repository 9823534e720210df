package main

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	blockhelpers "github.com/goliatone/go-blockhelpers"
	"github.com/goliatone/go-blockhelpers/components/stock"
	"github.com/goliatone/go-blockhelpers/pkg/blockhelper"
	"github.com/goliatone/go-blockhelpers/pkg/render/template"
	"github.com/goliatone/go-blockhelpers/pkg/render/template/gotemplate"
	"github.com/goliatone/go-blockhelpers/pkg/render/template/handlebars"
)

const (
	engineDjango     = "pongo2"
	engineHandlebars = "handlebars"
)

// app is the state shared by the subcommands: one registry, one renderer.
type app struct {
	cfg       Config
	logger    *zap.Logger
	registry  *blockhelper.Registry
	renderer  template.TemplateRenderer
	templates fs.FS
}

func newApp(cfg Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := blockhelper.New(blockhelper.WithLogger(logger))
	if err := stock.Register(registry, stock.WithPrefix(cfg.StockPrefix)); err != nil {
		return nil, err
	}

	helpers := blockhelpers.EmbeddedHelpers()
	if cfg.HelpersDir != "" {
		helpers = os.DirFS(cfg.HelpersDir)
	}
	if err := blockhelpers.LoadHelpers(registry, helpers); err != nil {
		return nil, fmt.Errorf("load helpers: %w", err)
	}

	templates := blockhelpers.EmbeddedTemplates()
	if cfg.TemplatesDir != "" {
		templates = os.DirFS(cfg.TemplatesDir)
	}

	renderer, err := newRenderer(cfg, registry, templates, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("helpers loaded",
		zap.Strings("helpers", registry.Names()),
		zap.String("engine", cfg.Engine),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		renderer:  renderer,
		templates: templates,
	}, nil
}

func newRenderer(cfg Config, registry *blockhelper.Registry, templates fs.FS, logger *zap.Logger) (template.TemplateRenderer, error) {
	switch cfg.Engine {
	case engineHandlebars:
		return handlebars.New(
			handlebars.WithFS(templates),
			handlebars.WithExtension(cfg.templateExtension()),
			handlebars.WithRegistry(registry),
			handlebars.WithLogger(logger),
		)
	case engineDjango, "":
		return gotemplate.New(
			gotemplate.WithFS(templates),
			gotemplate.WithExtension(cfg.templateExtension()),
			gotemplate.WithRegistry(registry),
			gotemplate.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// templateNames lists the templates matching the configured extension,
// without the extension, sorted.
func (a *app) templateNames() ([]string, error) {
	ext := a.cfg.templateExtension()
	var names []string
	err := fs.WalkDir(a.templates, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(path, ext) {
			return nil
		}
		names = append(names, strings.TrimSuffix(path, ext))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// hasTemplate reports whether name resolves to a template file.
func (a *app) hasTemplate(name string) bool {
	path := name
	if ext := a.cfg.templateExtension(); !strings.HasSuffix(path, ext) {
		path += ext
	}
	info, err := fs.Stat(a.templates, path)
	return err == nil && !info.IsDir()
}
