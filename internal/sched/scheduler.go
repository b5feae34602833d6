// Package sched drives the recurring crawl runs on a cron timetable.
package sched

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/scrape"
)

// Runner executes one crawl over a source family.
type Runner interface {
	Run(ctx context.Context, family string) (*news.RunResult, error)
}

// Scheduler triggers crawl runs at fixed daily times. Overlap is
// handled by the runner: a trigger that lands during an active run is
// skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	cfg    config.SchedulerConfig
	logger *slog.Logger
	devRun *time.Timer
}

// New creates a scheduler over the given runner.
func New(runner Runner, cfg config.SchedulerConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
	}
}

// Start registers the daily jobs and starts the cron loop. The context
// bounds every triggered run.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name     string
		spec     string
		families []string
	}{
		{"morning", s.cfg.MorningSpec, []string{scrape.FamilyAll}},
		{"midday", s.cfg.MiddaySpec, []string{scrape.FamilySporx}},
		{"evening", s.cfg.EveningSpec, []string{scrape.FamilyKonyaspor, scrape.FamilySporx}},
		{"night", s.cfg.NightSpec, []string{scrape.FamilyAll}},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, func() { s.trigger(ctx, j.name, j.families...) }); err != nil {
			return err
		}
		s.logger.Info("job registered", "job", j.name, "spec", j.spec, "families", j.families)
	}

	if s.cfg.DevRun {
		// Immediate run shortly after startup, for local development.
		s.devRun = time.AfterFunc(s.cfg.DevRunDelay, func() {
			s.trigger(ctx, "dev", scrape.FamilyAll)
		})
	}

	s.cron.Start()
	s.logger.Info("scheduler started")
	return nil
}

// trigger runs one scheduled crawl over each family in order. A panic
// inside a run is contained here so the cron loop survives.
func (s *Scheduler) trigger(ctx context.Context, job string, families ...string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled run panicked", "job", job, "panic", r)
		}
	}()

	for _, family := range families {
		s.logger.Info("scheduled run triggered", "job", job, "family", family)
		res, err := s.runner.Run(ctx, family)
		switch {
		case errors.Is(err, news.ErrRunInProgress):
			s.logger.Info("run already active, trigger skipped", "job", job, "family", family)
		case err != nil:
			s.logger.Error("scheduled run failed", "job", job, "family", family, "error", err)
		default:
			s.logger.Info("scheduled run finished",
				"job", job,
				"family", family,
				"processed", res.Processed,
				"added", res.Added,
				"duration", res.Duration)
		}
	}
}

// Stop halts the cron loop and waits for any running job callback to
// return.
func (s *Scheduler) Stop() {
	if s.devRun != nil {
		s.devRun.Stop()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
