package cmd

import (
	"context"
	"errors"

	"github.com/jmgilman/verstamp/internal/config"
)

func requireConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func requireLoader(ctx context.Context) (*config.Loader, error) {
	loader := LoaderFromContext(ctx)
	if loader == nil {
		return nil, errors.New("configuration loader not initialized")
	}
	return loader, nil
}
