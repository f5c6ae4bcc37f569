// Package bootstrap wires configuration into the extraction service and
// its optional storage and cache backends.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spherical/mcq-extractor/internal/cache"
	"github.com/spherical/mcq-extractor/internal/config"
	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/extract"
	"github.com/spherical/mcq-extractor/internal/observability"
	"github.com/spherical/mcq-extractor/internal/pdf"
	"github.com/spherical/mcq-extractor/internal/storage"
)

// Dependencies bundles the long-lived components built from a Config.
type Dependencies struct {
	Service   *extract.Service
	Extractor *extract.Extractor
	Validator *pdf.Validator

	// Repository and Cache are nil when disabled in configuration.
	Repository *storage.ExtractionRepository
	Cache      *cache.ExtractionCache

	db *sql.DB
}

// Open builds every dependency selected by cfg. Callers must Close the result.
func Open(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Validator: pdf.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.AllowedExtensions),
	}

	opts := []extract.Option{
		extract.WithLogger(logger),
		extract.WithValidator(deps.Validator),
	}

	if cfg.Storage.Driver != "none" {
		db, err := storage.Open(ctx, cfg.Storage.Driver, cfg.StorageDSN())
		if err != nil {
			return nil, domain.StorageError("open database", err)
		}
		deps.db = db

		applied, err := storage.Migrate(ctx, db, cfg.Storage.Driver)
		if err != nil {
			deps.Close()
			return nil, domain.StorageError("migrate database", err)
		}
		if len(applied) > 0 {
			logger.Info().Int("count", len(applied)).Msg("Applied database migrations")
		}

		deps.Repository = storage.NewExtractionRepository(db)
		opts = append(opts, extract.WithStore(deps.Repository))
	}

	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		deps.Close()
		return nil, domain.CacheError("open cache", err)
	}
	if c != nil {
		deps.Cache = c
		opts = append(opts, extract.WithCache(c))
	}

	deps.Extractor = extract.NewExtractor(extract.Config{
		Workers:           cfg.Extraction.Workers,
		ParallelThreshold: cfg.Extraction.ParallelThreshold,
	}, logger)

	deps.Service = extract.NewService(pdf.NewFitzSource(logger), deps.Extractor, opts...)
	return deps, nil
}

// Store returns the repository as a domain.ExtractionStore, or a nil
// interface when storage is disabled.
func (d *Dependencies) Store() domain.ExtractionStore {
	if d.Repository == nil {
		return nil
	}
	return d.Repository
}

// DB returns the open database handle, or nil when storage is disabled.
func (d *Dependencies) DB() *sql.DB {
	return d.db
}

// Close releases storage and cache connections.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}
