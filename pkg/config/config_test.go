package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join("testdata", "formflow.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	wantMessages := validation.DefaultMessages()
	wantMessages.Required = "Please answer this question"
	wantMessages.Max = "No more than {max}"
	if diff := cmp.Diff(wantMessages, cfg.Validation); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if cfg.OutputFormat() != tui.OutputFormatPrettyText {
		t.Fatalf("expected pretty output, got %q", cfg.OutputFormat())
	}
	if !cfg.Parser.Strict {
		t.Fatalf("expected strict parser")
	}
	if level, err := cfg.LogLevel(); err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v (%v)", level, err)
	}
	if got := len(cfg.SessionOptions()); got != 2 {
		t.Fatalf("expected messages and strict options, got %d", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected LoadFile to surface a missing file, got %v", err)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		raw  string
		want string
	}{
		"unknown key":    {raw: "[output]\nformat = \"json\"\ncolour = true\n", want: "output.colour"},
		"unknown format": {raw: "[output]\nformat = \"xml\"\n", want: "xml"},
		"bad level":      {raw: "[log]\nlevel = \"loud\"\n", want: "log level"},
		"bad syntax":     {raw: "[output\n", want: ""},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.raw))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %q, got %v", tc.want, err)
			}
		})
	}
}
