package main

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "BLOCKHELPERS_"

// Config holds the CLI configuration. Every field can be set from the
// environment (BLOCKHELPERS_*) and overridden by the matching flag.
type Config struct {
	// TemplatesDir is the template directory; empty uses the embedded examples.
	TemplatesDir string `env:"TEMPLATES_DIR"`
	// HelpersDir holds declarative helper files; empty uses the embedded ones.
	HelpersDir  string `env:"HELPERS_DIR"`
	Engine      string `env:"ENGINE" envDefault:"pongo2"`
	Extension   string `env:"EXTENSION"`
	StockPrefix string `env:"STOCK_PREFIX"`
	Addr        string `env:"ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	switch c.Engine {
	case engineDjango, engineHandlebars:
	default:
		return fmt.Errorf("%sENGINE must be %q or %q, got %q", envPrefix, engineDjango, engineHandlebars, c.Engine)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%sADDR is required", envPrefix)
	}
	return nil
}

// templateExtension returns the configured extension or the engine default.
func (c Config) templateExtension() string {
	ext := strings.TrimSpace(c.Extension)
	if ext == "" {
		if c.Engine == engineHandlebars {
			return ".hbs"
		}
		return ".tpl"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// initLogger builds a JSON logger on stderr so rendered output on stdout stays
// clean.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
