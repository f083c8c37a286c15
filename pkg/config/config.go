// Package config loads formflow.toml. Every section is optional and a
// missing file yields Default().
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// DefaultPath is the file looked up when no path is given.
const DefaultPath = "formflow.toml"

// Config mirrors formflow.toml.
type Config struct {
	Validation validation.Messages `toml:"validation"`
	Output     Output              `toml:"output"`
	Parser     Parser              `toml:"parser"`
	Log        Log                 `toml:"log"`
}

// Output selects how answers are written.
type Output struct {
	Format string `toml:"format"`
}

// Parser tunes schema loading.
type Parser struct {
	Strict bool `toml:"strict"`
}

// Log sets the CLI log level: debug, info, warn or error.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Validation: validation.DefaultMessages(),
		Output:     Output{Format: string(tui.OutputFormatJSON)},
		Log:        Log{Level: "info"},
	}
}

// Load reads path, falling back to Default when the file does not exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads path and fails when it is missing.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over Default and rejects unknown keys.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Validation = cfg.Validation.Merge(validation.DefaultMessages())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if _, err := tui.ParseOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel resolves Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.Log.Level) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// OutputFormat resolves Output.Format.
func (c Config) OutputFormat() tui.OutputFormat {
	format, err := tui.ParseOutputFormat(c.Output.Format)
	if err != nil {
		return tui.OutputFormatJSON
	}
	return format
}

// SessionOptions translates the configuration into session options.
func (c Config) SessionOptions() []session.Option {
	opts := []session.Option{session.WithMessages(c.Validation)}
	if c.Parser.Strict {
		opts = append(opts, session.WithStrict())
	}
	return opts
}
