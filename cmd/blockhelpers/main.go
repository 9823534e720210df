// Package main provides the blockhelpers CLI: render templates that use block
// helpers, list the registered helpers, serve rendered pages and preview
// templates interactively.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Build info set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(newCLI())
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// cli carries state from the root command's pre-run into the subcommands.
type cli struct {
	app            *app
	selectTemplate func(names []string) (string, error)
}

func newCLI() *cli {
	return &cli{selectTemplate: surveySelect(defaultSurveyIO)}
}

func newRootCmd(c *cli) *cobra.Command {
	var (
		templatesDir string
		helpersDir   string
		engine       string
		extension    string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:           "blockhelpers",
		Short:         "Render templates that use block helpers",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("templates") {
			cfg.TemplatesDir = templatesDir
		}
		if flags.Changed("helpers") {
			cfg.HelpersDir = helpersDir
		}
		if flags.Changed("engine") {
			cfg.Engine = engine
		}
		if flags.Changed("ext") {
			cfg.Extension = extension
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := initLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		c.app = a
		return nil
	}
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if c.app != nil {
			_ = c.app.logger.Sync()
		}
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&templatesDir, "templates", "", "template directory (default: embedded examples)")
	pf.StringVar(&helpersDir, "helpers", "", "directory of YAML/JSON/TOML helper definitions (default: embedded)")
	pf.StringVar(&engine, "engine", engineDjango, "template engine: pongo2 or handlebars")
	pf.StringVar(&extension, "ext", "", "template extension (default: .tpl for pongo2, .hbs for handlebars)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newRenderCmd(c),
		newListCmd(c),
		newServeCmd(c),
		newPreviewCmd(c),
	)
	return cmd
}
