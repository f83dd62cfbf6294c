package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ludo-technologies/pygrade/app"
	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/config"
	"github.com/ludo-technologies/pygrade/internal/pysource"
	"github.com/ludo-technologies/pygrade/service"
)

// grader holds everything one analyze or check run needs
type grader struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress domain.ProgressManager
	cache    *service.SQLiteReportCache
	useCase  *app.GradeUseCase
}

// loadConfig reads the config for target and applies the command-line
// overrides, including the global log flags
func loadConfig(path, target string, overrides service.ConfigOverrides) (*config.Config, error) {
	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(path, target)
	if err != nil {
		return nil, err
	}
	if overrides.LogLevel == "" {
		overrides.LogLevel = logLevel
	}
	merged, err := loader.MergeConfig(cfg, overrides)
	if err != nil {
		return nil, err
	}
	if logFormat != "" {
		merged.Logging.Format = logFormat
	}
	return merged, nil
}

// newGrader wires the tool pipelines, aggregator, cache and synthesizer
// for root. Close must be called when done.
func newGrader(cfg *config.Config, root string, showProgress bool) (*grader, error) {
	logger := newLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	filter, err := service.NewPathFilter(root, cfg.Analysis.ExcludePatterns, cfg.Analysis.RespectGitignore)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	pm := service.NewProgressManager(showProgress)

	invoker := service.NewProcessInvoker(logger)
	pipelines := service.NewToolPipelines(cfg, invoker, logger)
	executor := service.NewParallelExecutorFromConfig(&cfg.Performance, service.WithProgress(pm))

	opts := []service.AggregatorOption{
		service.WithPathFilter(filter),
		service.WithLogger(logger),
	}
	if cfg.Analysis.ResolveFunctions {
		opts = append(opts, service.WithFunctionLocator(pysource.NewLocator()))
	}
	aggregator := service.NewReportAggregator(pipelines, executor, opts...)

	synthesizer := service.NewSynthesizer(
		service.WithCohesionMethodThreshold(cfg.Grading.CohesionMethodThreshold))

	builder := app.NewGradeUseCaseBuilder().
		WithGatherer(aggregator).
		WithSynthesizer(synthesizer).
		WithPathFilter(filter).
		WithLogger(logger)

	g := &grader{cfg: cfg, logger: logger, progress: pm}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Directory
		if dir == "" {
			dir, err = service.DefaultCacheDirectory()
		}
		if err == nil {
			g.cache, err = service.OpenReportCache(dir)
		}
		if err != nil {
			logger.Warn("Report cache disabled", slog.String("error", err.Error()))
		} else {
			builder = builder.WithCache(g.cache, cfg.Fingerprint())
		}
	}

	g.useCase, err = builder.Build()
	if err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Run grades root, stopping early on interrupt
func (g *grader) Run(root, commit string) (*domain.GradeResult, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return g.useCase.Execute(ctx, domain.GradeRequest{
		Root:     root,
		Commit:   commit,
		Options:  service.NewConfigurationLoader().SynthesizeOptions(g.cfg),
		UseCache: g.cache != nil,
	})
}

// Close releases the progress display and the cache
func (g *grader) Close() {
	g.progress.Close()
	if g.cache != nil {
		if err := g.cache.Close(); err != nil {
			g.logger.Warn("Failed to close report cache", slog.String("error", err.Error()))
		}
	}
}
