// Package app wires together configuration, logging and the local store into
// a single Deps struct that commands receive at runtime.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/derickschaefer/chartline/internal/config"
	"github.com/derickschaefer/chartline/internal/logger"
	"github.com/derickschaefer/chartline/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// The store is opened lazily: render from stdin never touches the database.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger

	store *store.Store
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	log := logger.New(logger.Options{Level: cfg.Level(), JSON: cfg.JSONLog})
	return &Deps{Config: cfg, Logger: log}
}

// Store opens the configured database on first use.
func (d *Deps) Store() (*store.Store, error) {
	if d.store != nil {
		return d.store, nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	d.Logger.Debug().Str("path", s.Path()).Msg("store opened")
	d.store = s
	return s, nil
}

// Close releases the store if it was opened.
func (d *Deps) Close() error {
	if d.store == nil {
		return nil
	}
	err := d.store.Close()
	d.store = nil
	return err
}
