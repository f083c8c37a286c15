package main

import (
	"context"
	"time"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/source"
)

const fetchTimeout = 30 * time.Second

// loadSession resolves location as a file or URL and loads it.
func loadSession(ctx context.Context, location string, options ...session.Option) (*session.Session, error) {
	src, err := source.Parse(location)
	if err != nil {
		return nil, err
	}
	loader := formflow.NewLoader(source.WithHTTPFallback(fetchTimeout))
	return formflow.Load(ctx, loader, src, options...)
}
