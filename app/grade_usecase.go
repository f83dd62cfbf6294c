package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/gitref"
	"github.com/ludo-technologies/pygrade/internal/version"
	"github.com/ludo-technologies/pygrade/service"
)

// GradeUseCase orchestrates one analysis: cache lookup, gather, store,
// assess and synthesize
type GradeUseCase struct {
	gatherer    domain.ReportGatherer
	synthesizer domain.Synthesizer
	cache       domain.ReportCache
	fingerprint string
	filter      domain.PathFilter
	fileHelper  *FileHelper
	logger      *slog.Logger

	resolveCommit func(root string) (string, error)
	newRunID      func() string
	now           func() time.Time
}

// NewGradeUseCase creates a grade use case without a cache
func NewGradeUseCase(gatherer domain.ReportGatherer, synthesizer domain.Synthesizer) *GradeUseCase {
	return &GradeUseCase{
		gatherer:      gatherer,
		synthesizer:   synthesizer,
		fileHelper:    NewFileHelper(),
		logger:        slog.Default(),
		resolveCommit: gitref.HeadCommit,
		newRunID:      uuid.NewString,
		now:           time.Now,
	}
}

// Execute analyzes req.Root and grades the report. A failing tool only
// makes its section unavailable; errors are returned for an invalid root
// or a cancelled context.
func (uc *GradeUseCase) Execute(ctx context.Context, req domain.GradeRequest) (*domain.GradeResult, error) {
	start := uc.now()

	root, err := uc.validateRoot(req.Root)
	if err != nil {
		return nil, err
	}

	result := &domain.GradeResult{
		RunID:       uc.newRunID(),
		Root:        root,
		Commit:      req.Commit,
		Version:     version.Version,
		GeneratedAt: start,
	}

	files, err := uc.fileHelper.CollectPythonFiles(root, uc.filter)
	if err != nil {
		uc.logger.Warn("Failed to list Python files", slog.String("error", err.Error()))
	}
	result.PythonFiles = len(files)
	if err == nil && len(files) == 0 {
		uc.logger.Warn("No Python files found", slog.String("root", root))
	}

	useCache := req.UseCache && uc.cache != nil
	if useCache && result.Commit == "" {
		commit, err := uc.resolveCommit(root)
		if err != nil {
			uc.logger.Debug("Commit not resolved, cache skipped", slog.String("error", err.Error()))
			useCache = false
		}
		result.Commit = commit
	}
	key := service.ReportCacheKey(result.Commit, uc.fingerprint)

	var report *domain.Report
	if useCache {
		report, err = uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			result.Cached = true
			uc.logger.Info("Using cached report", slog.String("commit", result.Commit))
		case errors.Is(err, domain.ErrCacheMiss):
			report = nil
		default:
			uc.logger.Warn("Cache lookup failed", slog.String("error", err.Error()))
			report = nil
		}
	}

	if report == nil {
		report, err = uc.gatherer.Gather(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("analysis of %s failed: %w", root, err)
		}
		if useCache && cacheable(report) {
			if err := uc.cache.Put(ctx, key, report); err != nil {
				uc.logger.Warn("Failed to cache report", slog.String("error", err.Error()))
			}
		}
	}

	result.Report = report
	result.Assessment = domain.Assess(report)
	result.Narrative = uc.synthesizer.Synthesize(report, req.Options)
	result.Duration = uc.now().Sub(start)

	uc.logger.Info("Analysis complete",
		slog.String("run_id", result.RunID),
		slog.Int("score", result.Assessment.Grade.Score),
		slog.String("grade", string(result.Assessment.Grade.Label)),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (uc *GradeUseCase) validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRoot, err)
	}
	ok, err := uc.fileHelper.DirExists(abs)
	if err != nil || !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRoot, abs)
	}
	return abs, nil
}

// cacheable reports whether every section either completed or was turned
// off. A report with a failed tool is not stored, so installing the tool
// takes effect on the next run.
func cacheable(report *domain.Report) bool {
	for _, s := range report.Sections() {
		if !s.Available() && s.Reason != service.ReasonDisabled {
			return false
		}
	}
	return true
}

// GradeUseCaseBuilder builds a GradeUseCase
type GradeUseCaseBuilder struct {
	gatherer      domain.ReportGatherer
	synthesizer   domain.Synthesizer
	cache         domain.ReportCache
	fingerprint   string
	filter        domain.PathFilter
	logger        *slog.Logger
	resolveCommit func(root string) (string, error)
	newRunID      func() string
	now           func() time.Time
}

// NewGradeUseCaseBuilder creates a new builder
func NewGradeUseCaseBuilder() *GradeUseCaseBuilder {
	return &GradeUseCaseBuilder{}
}

// WithGatherer sets the report gatherer
func (b *GradeUseCaseBuilder) WithGatherer(g domain.ReportGatherer) *GradeUseCaseBuilder {
	b.gatherer = g
	return b
}

// WithSynthesizer sets the synthesizer
func (b *GradeUseCaseBuilder) WithSynthesizer(s domain.Synthesizer) *GradeUseCaseBuilder {
	b.synthesizer = s
	return b
}

// WithCache sets the report cache and the fingerprint of the settings the
// cached reports depend on
func (b *GradeUseCaseBuilder) WithCache(cache domain.ReportCache, fingerprint string) *GradeUseCaseBuilder {
	b.cache = cache
	b.fingerprint = fingerprint
	return b
}

// WithPathFilter sets the filter used when counting Python files
func (b *GradeUseCaseBuilder) WithPathFilter(f domain.PathFilter) *GradeUseCaseBuilder {
	b.filter = f
	return b
}

// WithLogger sets the logger
func (b *GradeUseCaseBuilder) WithLogger(l *slog.Logger) *GradeUseCaseBuilder {
	b.logger = l
	return b
}

// WithCommitResolver replaces the .git based commit lookup
func (b *GradeUseCaseBuilder) WithCommitResolver(fn func(root string) (string, error)) *GradeUseCaseBuilder {
	b.resolveCommit = fn
	return b
}

// WithRunIDGenerator replaces the UUID run ID generator
func (b *GradeUseCaseBuilder) WithRunIDGenerator(fn func() string) *GradeUseCaseBuilder {
	b.newRunID = fn
	return b
}

// WithClock replaces time.Now
func (b *GradeUseCaseBuilder) WithClock(fn func() time.Time) *GradeUseCaseBuilder {
	b.now = fn
	return b
}

// Build creates the GradeUseCase
func (b *GradeUseCaseBuilder) Build() (*GradeUseCase, error) {
	if b.gatherer == nil {
		return nil, fmt.Errorf("report gatherer is required")
	}
	if b.synthesizer == nil {
		b.synthesizer = service.NewSynthesizer()
	}

	uc := NewGradeUseCase(b.gatherer, b.synthesizer)
	uc.cache = b.cache
	uc.fingerprint = b.fingerprint
	uc.filter = b.filter
	if b.logger != nil {
		uc.logger = b.logger
	}
	if b.resolveCommit != nil {
		uc.resolveCommit = b.resolveCommit
	}
	if b.newRunID != nil {
		uc.newRunID = b.newRunID
	}
	if b.now != nil {
		uc.now = b.now
	}
	return uc, nil
}
