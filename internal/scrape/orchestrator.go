package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/fetcher"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/sources"
)

// Family selects which group of sources a run covers.
const (
	FamilyAll       = "all"
	FamilyGeneric   = "generic"
	FamilySporx     = "sporx"
	FamilyKonyaspor = "konyaspor"
)

// KnownFamily reports whether name is a valid run selector.
func KnownFamily(name string) bool {
	switch name {
	case FamilyAll, FamilyGeneric, FamilySporx, FamilyKonyaspor:
		return true
	}
	return false
}

// Orchestrator runs crawl rounds across the source families. At most
// one run executes at a time; a second trigger while a run is active
// is rejected, not queued.
type Orchestrator struct {
	crawler *Crawler
	cfg     config.CrawlConfig
	logger  *slog.Logger

	running atomic.Bool

	mu   sync.Mutex
	last *news.RunResult
}

// NewOrchestrator creates a run orchestrator over the given store.
func NewOrchestrator(fetch *fetcher.Client, store Store, cfg config.CrawlConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		crawler: NewCrawler(fetch, store, cfg, logger),
		cfg:     cfg,
		logger:  logger.With("component", "orchestrator"),
	}
}

// Run executes one crawl over the named family. It returns
// news.ErrRunInProgress when another run is active and
// news.ErrUnknownSource for an unrecognized family name.
func (o *Orchestrator) Run(ctx context.Context, family string) (*news.RunResult, error) {
	if !KnownFamily(family) {
		return nil, fmt.Errorf("%w: %q", news.ErrUnknownSource, family)
	}
	if !o.running.CompareAndSwap(false, true) {
		return nil, news.ErrRunInProgress
	}
	defer o.running.Store(false)

	start := time.Now()
	res := &news.RunResult{StartedAt: start}
	cache := NewRunCache()
	o.logger.Info("run started", "family", family)

	switch family {
	case FamilyGeneric:
		o.runGeneric(ctx, cache, res)
	case FamilySporx:
		o.runSporx(ctx, cache, res)
	case FamilyKonyaspor:
		o.runKonyaspor(ctx, cache, res)
	case FamilyAll:
		o.runKonyaspor(ctx, cache, res)
		o.runSporx(ctx, cache, res)
		o.runGeneric(ctx, cache, res)
	}

	res.Duration = time.Since(start)
	o.logger.Info("run finished",
		"family", family,
		"processed", res.Processed,
		"added", res.Added,
		"duration", res.Duration)

	o.mu.Lock()
	o.last = res
	o.mu.Unlock()
	return res, nil
}

// Running reports whether a run is currently active.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// LastResult returns the most recent completed run, or nil.
func (o *Orchestrator) LastResult() *news.RunResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Orchestrator) runGeneric(ctx context.Context, cache *RunCache, res *news.RunResult) {
	defer o.recoverFamily(FamilyGeneric)
	o.runSources(ctx, sources.Generic(), cache, res)
}

func (o *Orchestrator) runKonyaspor(ctx context.Context, cache *RunCache, res *news.RunResult) {
	defer o.recoverFamily(FamilyKonyaspor)
	o.runSources(ctx, sources.Konyaspor(), cache, res)
}

func (o *Orchestrator) runSources(ctx context.Context, srcs []sources.Source, cache *RunCache, res *news.RunResult) {
	for i := range srcs {
		if i > 0 {
			o.crawler.pause(ctx, o.cfg.SourceDelay)
		}
		sr, err := o.crawler.CrawlSource(ctx, &srcs[i], cache)
		if err != nil {
			o.logger.Error("source failed", "source", srcs[i].Name, "error", err)
		}
		res.Absorb(sr)
	}
}

func (o *Orchestrator) runSporx(ctx context.Context, cache *RunCache, res *news.RunResult) {
	defer o.recoverFamily(FamilySporx)
	fam := sources.Sporx()
	for i, cat := range fam.Categories {
		if i > 0 {
			o.crawler.pause(ctx, o.cfg.SourceDelay)
		}
		sr, err := o.crawler.CrawlSporxCategory(ctx, &fam, cat, cache)
		if err != nil {
			o.logger.Error("category failed", "source", cat.Name, "error", err)
		}
		res.Absorb(sr)
	}
}

// recoverFamily keeps a panic in one family from taking down the rest
// of the run.
func (o *Orchestrator) recoverFamily(family string) {
	if r := recover(); r != nil {
		o.logger.Error("family panicked", "family", family, "panic", r)
	}
}
