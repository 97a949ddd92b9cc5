package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hallgrim/notelint/internal/cache"
	"github.com/hallgrim/notelint/internal/mcpserver"
	"github.com/hallgrim/notelint/internal/models"
	"github.com/hallgrim/notelint/internal/report"
	"github.com/hallgrim/notelint/internal/storage"
	"github.com/hallgrim/notelint/internal/validate"
	"github.com/hallgrim/notelint/internal/watcher"
)

// runtime bundles the collaborators shared by every command.
type runtime struct {
	app    *application
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	runner *validate.Runner
	db     *cache.DB // nil when the cache is disabled
}

func (rt *runtime) close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

// setup applies options, initialises logging, and wires storage, the asset
// store, the optional cache, and the validation runner.
func setup(opts []Option) (*runtime, error) {
	app := &application{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("init corpus storage: %w", err)
	}
	assets := storage.NewAssetDir(cfg.Corpus.AssetsDir)

	var db *cache.DB
	if cfg.Cache.Path != "" {
		db, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}

	var dc cache.DocumentCache
	if db != nil {
		dc = db
	}
	runner := validate.NewRunner(store, assets, dc, logger, cfg.App.Parallelism)

	logger.Debug("configuration loaded",
		slog.String("corpus_path", cfg.Corpus.Path),
		slog.String("assets_dir", cfg.Corpus.AssetsDir),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &runtime{app: app, cfg: cfg, logger: logger, store: store, runner: runner, db: db}, nil
}

// Validate runs a single validation pass and writes the defect report.
// It returns clean=false when defects were found; err is reserved for fatal
// failures (malformed metadata, duplicate slugs, I/O).
func Validate(ctx context.Context, opts ...Option) (clean bool, err error) {
	rt, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer rt.close()

	rep, err := rt.runner.Run(ctx)
	if err != nil {
		return false, err
	}
	if err := writeReport(rt, rep); err != nil {
		return false, err
	}
	return rep.Clean(), nil
}

// Watch validates once, then re-validates after every corpus change until a
// shutdown signal arrives or ctx is cancelled.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	watchCycle(ctx, rt, true)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Watch(gCtx, rt.store.Root(), rt.logger, 250*time.Millisecond, func() {
			watchCycle(gCtx, rt, false)
		})
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			rt.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			return context.Canceled
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// watchCycle runs one validation pass and writes the report. When the cache
// is enabled, re-validation cycles compare against the previous run's
// recorded defects and skip the write if nothing changed, so an untouched
// report is not reprinted on every save.
func watchCycle(ctx context.Context, rt *runtime, initial bool) {
	var (
		prev     []models.Defect
		havePrev bool
	)
	if rt.db != nil && !initial {
		last, err := rt.db.LastRunDefects()
		if err != nil {
			rt.logger.Warn("cache: read last run failed", slog.String("error", err.Error()))
		} else {
			prev, havePrev = last, true
		}
	}

	rep, err := rt.runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(rt.app.errOut, "%v\n", err)
		return
	}
	if havePrev && slices.Equal(prev, rep.Defects) {
		rt.logger.Debug("report unchanged since previous run")
		return
	}
	if wErr := writeReport(rt, rep); wErr != nil {
		rt.logger.Error("write report failed", slog.String("error", wErr.Error()))
	}
}

// Lookup resolves one slug through the corpus index and prints the document path.
func Lookup(ctx context.Context, slug string, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	rep, err := rt.runner.Run(ctx)
	if err != nil {
		return err
	}
	doc, err := rep.Index.Lookup(slug)
	if err != nil {
		return fmt.Errorf("slug %q: %w", slug, err)
	}
	fmt.Fprintf(rt.app.out, "%s\t%s\n", doc.Slug, doc.Path)
	return nil
}

// List enumerates every document as "slug<TAB>path", in corpus order.
func List(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	rep, err := rt.runner.Run(ctx)
	if err != nil {
		return err
	}
	for _, doc := range rep.Index.All() {
		fmt.Fprintf(rt.app.out, "%s\t%s\n", doc.Slug, doc.Path)
	}
	return nil
}

// ServeMCP runs the stdio MCP server until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	srv := mcpserver.New(rt.runner)
	rt.logger.Info("mcp: serving on stdio")
	return srv.ServeStdio()
}

// writeReport renders defects in the configured format. Defect lines go to
// the error stream so a clean stdout stays scriptable.
func writeReport(rt *runtime, rep *validate.Report) error {
	switch rt.cfg.App.Output {
	case report.FormatJSON:
		return report.WriteJSON(rt.app.out, rep.Defects)
	default:
		return report.WriteText(rt.app.errOut, rep.Defects)
	}
}
