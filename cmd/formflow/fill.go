package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
)

var (
	fillOutput  string
	fillAnswers string
	fillFormat  string
)

var fillCmd = &cobra.Command{
	Use:   "fill [schema]",
	Short: "Fill a form interactively and print the answers",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	format := cfg.OutputFormat()
	if fillFormat != "" {
		parsed, err := tui.ParseOutputFormat(fillFormat)
		if err != nil {
			return err
		}
		format = parsed
	}

	options := append(cfg.SessionOptions(), session.WithLogger(logger))
	s, err := loadSession(ctx, args[0], options...)
	if err != nil {
		return err
	}

	if fillAnswers != "" {
		if err := seedAnswers(s, fillAnswers); err != nil {
			return err
		}
	}

	renderer, err := tui.New(tui.WithOutputFormat(format), tui.WithLogger(logger))
	if err != nil {
		return err
	}
	out, err := renderer.Run(ctx, s)
	if err != nil {
		return err
	}
	logger.Info("form completed", "session", s.ID(), "answers", len(s.Answers()))
	return writeOutput(cmd.OutOrStdout(), fillOutput, out)
}

func seedAnswers(s *session.Session, path string) error {
	answers, err := readAnswers(path)
	if err != nil {
		return err
	}
	_, skipped, err := s.Seed(answers)
	if err != nil {
		return err
	}
	for _, id := range skipped {
		logger.Warn("answer ignored", "field", id, "reason", "unknown or calculated field")
	}
	return nil
}

// readAnswers decodes a flat id -> value document. YAML is chosen by
// extension; anything else is read as JSON.
func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	answers := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &answers)
	default:
		err = json.Unmarshal(data, &answers)
	}
	if err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("answers written", "path", path)
	return nil
}

