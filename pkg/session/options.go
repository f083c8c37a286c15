package session

import (
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger routes load warnings and recompute diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMessages overrides validation messages. Blank entries keep defaults.
func WithMessages(messages validation.Messages) Option {
	return func(s *Session) {
		s.validator = validation.New(messages)
	}
}

// WithVisibility installs a conditional-display evaluator.
func WithVisibility(eval visibility.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.visibility = eval
		}
	}
}

// WithStrict rejects schemas that produce parse warnings.
func WithStrict() Option {
	return func(s *Session) {
		s.parseOptions = append(s.parseOptions, schema.WithStrict())
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}
