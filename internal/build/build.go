// Package build runs one documentation build: reset the error log, scan the
// roots, then assemble the catalog.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phobologic/phpdocgen/internal/catalog"
	"github.com/phobologic/phpdocgen/internal/config"
	"github.com/phobologic/phpdocgen/internal/errlog"
	"github.com/phobologic/phpdocgen/internal/source"
)

// Result is the outcome of one Run.
type Result struct {
	Catalog  *catalog.Catalog
	Files    int
	Duration time.Duration
}

// Builder owns the error log shared by successive builds. Concurrent Run
// calls are serialized. Each Run resets the log, so a catalog's errors are
// only stable once its Warm has snapshotted them.
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
	log    *errlog.Log

	mu    sync.Mutex
	table *source.Table
}

// New returns a Builder for cfg.
func New(cfg *config.Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger, log: errlog.New()}
}

// Log returns the error log every build reports into.
func (b *Builder) Log() *errlog.Log { return b.log }

// Run builds the catalog for roots, or the configured roots when none are
// given. The previous build's table is released once the new one is ready.
func (b *Builder) Run(ctx context.Context, roots ...string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(roots) == 0 {
		roots = b.cfg.Roots
	}
	opts, err := b.cfg.SourceOptions(b.logger)
	if err != nil {
		return nil, fmt.Errorf("build options: %w", err)
	}

	start := time.Now()
	b.log.Reset()

	table, err := source.Scan(ctx, roots, opts)
	if err != nil {
		return nil, err
	}
	if b.table != nil {
		b.table.Close()
	}
	b.table = table

	cat := catalog.Build(table, b.log)
	res := &Result{Catalog: cat, Files: table.Files(), Duration: time.Since(start)}
	b.logger.Info("build complete",
		slog.Int("files", res.Files),
		slog.Int("classes", len(cat.Classes())),
		slog.Int("functions", len(cat.Functions())),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// Close releases the last build's table.
func (b *Builder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.table != nil {
		b.table.Close()
		b.table = nil
	}
}
