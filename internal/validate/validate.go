// Package validate orchestrates a corpus validation pass: list, parse,
// index, check, report.
package validate

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hallgrim/notelint/internal/cache"
	"github.com/hallgrim/notelint/internal/checker"
	"github.com/hallgrim/notelint/internal/corpus"
	"github.com/hallgrim/notelint/internal/models"
	"github.com/hallgrim/notelint/internal/parser"
	"github.com/hallgrim/notelint/internal/storage"
)

// Report is the outcome of one validation pass over a clean-loading corpus.
type Report struct {
	Index   *corpus.Index
	Defects []models.Defect
}

// Clean reports whether the pass found no defects.
func (r *Report) Clean() bool { return len(r.Defects) == 0 }

// Runner holds the collaborators for validation passes.
type Runner struct {
	store  storage.Provider
	assets checker.AssetStore
	db     cache.DocumentCache // nil disables the cache
	logger *slog.Logger
	limit  int
}

// NewRunner creates a Runner. db may be nil to run without the incremental
// cache. limit bounds parse parallelism; <= 0 means GOMAXPROCS.
func NewRunner(store storage.Provider, assets checker.AssetStore, db cache.DocumentCache, logger *slog.Logger, limit int) *Runner {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Runner{store: store, assets: assets, db: db, logger: logger, limit: limit}
}

// Run executes one validation pass. Documents are parsed in parallel as an
// optimization only; results are ordered by path before indexing, so the
// report is deterministic regardless of scheduling. The first malformed
// document cancels the pass, and a duplicate slug fails index construction
// before any reference checking runs.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	metas, err := r.store.List("")
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, len(metas))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i, meta := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			doc, err := r.loadDocument(meta)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx, err := corpus.BuildIndex(docs)
	if err != nil {
		return nil, err
	}

	defects := checker.Check(idx, r.assets)

	if r.db != nil {
		live := make(map[string]struct{}, len(metas))
		for _, m := range metas {
			live[m.Path] = struct{}{}
		}
		if err := r.db.Prune(live); err != nil {
			r.logger.Warn("cache prune failed", slog.String("error", err.Error()))
		}
		if err := r.db.RecordRun(idx.Len(), defects); err != nil {
			r.logger.Warn("cache record run failed", slog.String("error", err.Error()))
		}
	}

	return &Report{Index: idx, Defects: defects}, nil
}

// loadDocument returns the parsed record for one corpus file, consulting the
// cache first. The checksum is recomputed from the bytes actually read so a
// concurrent edit between List and Read cannot poison the cache.
func (r *Runner) loadDocument(meta models.FileMetadata) (*models.Document, error) {
	if r.db != nil {
		if doc, ok, err := r.db.Lookup(meta.Path, meta.Checksum); err != nil {
			r.logger.Warn("cache lookup failed", slog.String("path", meta.Path), slog.String("error", err.Error()))
		} else if ok {
			r.logger.Debug("cache hit", slog.String("path", meta.Path))
			return doc, nil
		}
	}

	data, err := r.store.Read(meta.Path)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Parse(meta.Path, data)
	if err != nil {
		return nil, err
	}
	doc.Checksum = storage.Checksum(data)

	if r.db != nil {
		if err := r.db.Store(doc); err != nil {
			r.logger.Warn("cache store failed", slog.String("path", meta.Path), slog.String("error", err.Error()))
		}
	}
	return doc, nil
}
