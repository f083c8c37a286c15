// Package formflow is the entry point for embedding the form engine. It
// re-exports the session types and wires the schema loader.
package formflow

import (
	"context"
	"errors"

	internalLoader "github.com/goliatone/go-formflow/internal/source/loader"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/source"
)

// Session aliases session.Session.
type Session = session.Session

// Option aliases session.Option.
type Option = session.Option

// Result aliases session.Result.
type Result = session.Result

// NewSession returns an unloaded session.
func NewSession(options ...Option) *Session {
	return session.New(options...)
}

// NewLoader constructs a schema loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...source.LoaderOption) source.Loader {
	return internalLoader.New(source.NewLoaderOptions(options...))
}

// Load fetches src with loader and returns a session with the schema
// installed, positioned on the group list.
func Load(ctx context.Context, loader source.Loader, src source.Source, options ...Option) (*Session, error) {
	if loader == nil {
		return nil, errors.New("formflow: loader is nil")
	}
	raw, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	s := session.New(options...)
	if _, err := s.LoadSchema(raw); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile is Load for a local schema file.
func LoadFile(ctx context.Context, path string, options ...Option) (*Session, error) {
	return Load(ctx, NewLoader(), source.FromFile(path), options...)
}
