package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const watchDebounce = 200 * time.Millisecond

func newRenderCmd(c *cli) *cobra.Command {
	var (
		dataPath string
		outPath  string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(dataPath)
			if err != nil {
				return err
			}

			name := args[0]
			if err := renderTo(cmd.OutOrStdout(), c.app, name, data, outPath); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchTemplates(cmd.Context(), c.app, func(next *app) {
				c.app = next
				if err := renderTo(cmd.OutOrStdout(), next, name, data, outPath); err != nil {
					next.logger.Error("re-render failed", zap.String("template", name), zap.Error(err))
				}
			})
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "YAML or JSON file with template data")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when templates or helper files change")
	return cmd
}

func renderTo(stdout io.Writer, a *app, name string, data map[string]any, outPath string) error {
	html, err := a.renderer.RenderTemplate(name, data)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err := fmt.Fprintln(stdout, html)
		return err
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info("rendered", zap.String("template", name), zap.String("output", outPath))
	return nil
}

// loadData reads template data from a YAML or JSON file. JSON parses as YAML.
func loadData(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return data, nil
}

// watchTemplates rebuilds the app whenever a file under the template or
// helper directory changes and hands the fresh app to onChange. Rebuilding
// drops the engines' template caches and reloads helper definitions. It blocks
// until ctx is done.
func watchTemplates(ctx context.Context, a *app, onChange func(*app)) error {
	var dirs []string
	if a.cfg.TemplatesDir != "" {
		dirs = append(dirs, a.cfg.TemplatesDir)
	}
	if a.cfg.HelpersDir != "" {
		dirs = append(dirs, a.cfg.HelpersDir)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("watch needs --templates or --helpers; embedded files never change")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	tree, err := watchDirs(dirs...)
	if err != nil {
		return err
	}
	for _, dir := range tree {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		a.logger.Debug("watching", zap.String("dir", dir))
	}
	a.logger.Info("watching", zap.Strings("roots", dirs), zap.Int("dirs", len(tree)))

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			a.logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					added, err := watchDirs(event.Name)
					if err != nil {
						a.logger.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					for _, dir := range added {
						if err := watcher.Add(dir); err != nil {
							a.logger.Warn("watch new directory", zap.String("dir", dir), zap.Error(err))
						}
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			trigger = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", zap.Error(err))
		case <-trigger:
			trigger = nil
			next, err := newApp(a.cfg, a.logger)
			if err != nil {
				a.logger.Error("reload failed", zap.Error(err))
				continue
			}
			a = next
			onChange(next)
		}
	}
}

// watchDirs returns every directory under the given roots, roots included.
// fsnotify watches are not recursive.
func watchDirs(roots ...string) ([]string, error) {
	var dirs []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return dirs, nil
}
