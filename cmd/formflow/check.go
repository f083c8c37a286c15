package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/session"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check [schema]",
	Short: "Load a schema and report warnings and the calculation order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		options := cfg.SessionOptions()
		if checkStrict {
			options = append(options, session.WithStrict())
		}
		return checkSchema(cmd.Context(), cmd.OutOrStdout(), args[0], options...)
	},
}

func checkSchema(ctx context.Context, w io.Writer, location string, options ...session.Option) error {
	s, err := loadSession(ctx, location, options...)
	if err != nil {
		var cycle *formula.CycleDetectedError
		if errors.As(err, &cycle) {
			fmt.Fprintf(w, "✗ calculation cycle: %s\n", strings.Join(cycle.FieldIDs, " -> "))
		}
		return err
	}

	groups := s.GroupList()
	fields := 0
	for i := range groups {
		if g, ok := s.Schema().Group(i); ok {
			fields += len(g.Fields)
		}
	}

	warnings := s.Warnings()
	for _, warn := range warnings {
		fmt.Fprintf(w, "  ⚠ %s: %s\n", warn.FieldContext, warn.Reason)
	}
	if order := s.CalculationOrder(); len(order) > 0 {
		fmt.Fprintf(w, "calculation order: %s\n", strings.Join(order, ", "))
	}
	fmt.Fprintf(w, "✓ %s: %d group(s), %d field(s), %d warning(s)\n", location, len(groups), fields, len(warnings))
	return nil
}
