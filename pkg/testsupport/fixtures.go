// Package testsupport bundles schema fixtures and helpers shared by the
// package tests and the CLI tests.
package testsupport

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/session"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture names bundled with the package.
const (
	Household = "household.json"
	Cycle     = "cycle.json"
	Partial   = "partial.json"
)

// ReadFixture returns the raw bytes of a bundled fixture.
func ReadFixture(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("testsupport: fixture name is required")
	}
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	return data, nil
}

// MustFixture reads a bundled fixture or fails the test.
func MustFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := ReadFixture(name)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return data
}

// LoadSession builds a session and loads the named fixture into it.
func LoadSession(t testing.TB, name string, options ...session.Option) *session.Session {
	t.Helper()

	s := session.New(options...)
	if _, err := s.LoadSchema(MustFixture(t, name)); err != nil {
		t.Fatalf("load schema %s: %v", name, err)
	}
	return s
}

// UpdateGoldensEnv names the variable that makes golden tests rewrite their
// files instead of comparing against them.
const UpdateGoldensEnv = "FORMFLOW_UPDATE_GOLDENS"

// CompareGolden diffs renderer output against its golden copy.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden returns the stored golden output at path.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (set %s=1 to create it)", path, err, UpdateGoldensEnv)
	}
	return data
}

// WriteMaybeGolden stores data at path when UpdateGoldensEnv is set and
// reports whether it did, in which case the caller skips the comparison.
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateGoldensEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
	t.Logf("updated golden %s", path)
	return true
}
