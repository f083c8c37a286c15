package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, testsupport.MustFixture(t, name), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCheckSchemaReportsOrderAndWarnings(t *testing.T) {
	var out bytes.Buffer
	if err := checkSchema(context.Background(), &out, writeFixture(t, testsupport.Household)); err != nil {
		t.Fatalf("check: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "calculation order: members, perCapita") {
		t.Fatalf("expected calculation order, got %q", got)
	}
	if !strings.Contains(got, "3 group(s), 7 field(s), 0 warning(s)") {
		t.Fatalf("expected summary line, got %q", got)
	}

	out.Reset()
	if err := checkSchema(context.Background(), &out, writeFixture(t, testsupport.Partial)); err != nil {
		t.Fatalf("check partial: %v", err)
	}
	if !strings.Contains(out.String(), "contact/broken") {
		t.Fatalf("expected warning to be printed, got %q", out.String())
	}

	if err := checkSchema(context.Background(), &out, writeFixture(t, testsupport.Partial), session.WithStrict()); err == nil {
		t.Fatalf("expected strict check to fail")
	}
}

func TestCheckSchemaReportsCycle(t *testing.T) {
	var out bytes.Buffer
	err := checkSchema(context.Background(), &out, writeFixture(t, testsupport.Cycle))
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(out.String(), "x -> y") {
		t.Fatalf("expected cycle members, got %q", out.String())
	}
}

func TestReadAnswers(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "answers.json")
	yamlPath := filepath.Join(dir, "answers.yaml")
	if err := os.WriteFile(jsonPath, []byte(`{"adults": 2, "name": "Ann"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("adults: 2\nname: Ann\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fromJSON, err := readAnswers(jsonPath)
	if err != nil {
		t.Fatalf("json answers: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"adults": 2.0, "name": "Ann"}, fromJSON); diff != "" {
		t.Fatalf("json answers mismatch (-want +got):\n%s", diff)
	}
	fromYAML, err := readAnswers(yamlPath)
	if err != nil {
		t.Fatalf("yaml answers: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"adults": 2, "name": "Ann"}, fromYAML); diff != "" {
		t.Fatalf("yaml answers mismatch (-want +got):\n%s", diff)
	}

	s := testsupport.LoadSession(t, testsupport.Household)
	if err := seedAnswers(s, yamlPath); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if v, _ := s.FieldValue("adults"); v != 2.0 {
		t.Fatalf("expected seeded value to be normalized, got %#v", v)
	}
}

func TestWriteJSONSchema(t *testing.T) {
	var out bytes.Buffer
	if err := writeJSONSchema(&out); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, key := range []string{"groupId", "lstViewQuestionModel", "questionCalculation"} {
		if !strings.Contains(out.String(), key) {
			t.Fatalf("expected %s in schema output", key)
		}
	}
}

func TestWriteOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	var stdout bytes.Buffer
	if err := writeOutput(&stdout, path, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	if got := testsupport.MustReadGolden(t, path); string(got) != `{"a":1}` {
		t.Fatalf("unexpected file contents %q", got)
	}
}

func TestLoadConfigExplicitPathMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "formflow.toml")
	if _, err := loadConfig(missing, true); err == nil {
		t.Fatalf("expected explicit missing config to fail")
	}
	if _, err := loadConfig(missing, false); err != nil {
		t.Fatalf("expected default path to be optional, got %v", err)
	}
}
