package sched

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/scrape"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	err     error
	panicOn bool
}

func (f *fakeRunner) Run(ctx context.Context, family string) (*news.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, family)
	f.mu.Unlock()
	if f.panicOn {
		panic("runner exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &news.RunResult{}, nil
}

func (f *fakeRunner) families() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:     true,
		MorningSpec: "0 8 * * *",
		MiddaySpec:  "30 12 * * *",
		EveningSpec: "0 18 * * *",
		NightSpec:   "0 23 * * *",
	}
}

func TestStartRegistersJobs(t *testing.T) {
	s := New(&fakeRunner{}, testSchedulerConfig(), testLogger)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.MorningSpec = "not a cron spec"
	s := New(&fakeRunner{}, cfg, testLogger)
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestDevRunTriggersFullCrawl(t *testing.T) {
	runner := &fakeRunner{}
	cfg := testSchedulerConfig()
	cfg.DevRun = true
	cfg.DevRunDelay = 10 * time.Millisecond

	s := New(runner, cfg, testLogger)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if calls := runner.families(); len(calls) > 0 {
			if calls[0] != scrape.FamilyAll {
				t.Errorf("dev run family = %q, want all", calls[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("dev run never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTriggerToleratesActiveRun(t *testing.T) {
	runner := &fakeRunner{err: news.ErrRunInProgress}
	s := New(runner, testSchedulerConfig(), testLogger)

	// Must not panic or error; the skip is just logged.
	s.trigger(context.Background(), "morning", scrape.FamilyAll)
	if len(runner.families()) != 1 {
		t.Error("runner should still be invoked once")
	}
}

func TestTriggerRunsFamiliesInOrder(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, testSchedulerConfig(), testLogger)

	s.trigger(context.Background(), "evening", scrape.FamilyKonyaspor, scrape.FamilySporx)

	calls := runner.families()
	if len(calls) != 2 || calls[0] != scrape.FamilyKonyaspor || calls[1] != scrape.FamilySporx {
		t.Errorf("calls = %v", calls)
	}
}

func TestTriggerContainsPanic(t *testing.T) {
	runner := &fakeRunner{panicOn: true}
	s := New(runner, testSchedulerConfig(), testLogger)

	// A panicking run must not escape the trigger.
	s.trigger(context.Background(), "night", scrape.FamilyAll)
}
