package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/sporhub/newscrawler/internal/news"
)

func TestKnownFamily(t *testing.T) {
	for _, f := range []string{FamilyAll, FamilyGeneric, FamilySporx, FamilyKonyaspor} {
		if !KnownFamily(f) {
			t.Errorf("%q should be known", f)
		}
	}
	for _, f := range []string{"", "twitter", "ALL", "konya"} {
		if KnownFamily(f) {
			t.Errorf("%q should be unknown", f)
		}
	}
}

func TestOrchestratorUnknownFamily(t *testing.T) {
	fetch := testFetcher()
	defer fetch.Close()
	o := NewOrchestrator(fetch, &fakeStore{}, testCrawlConfig(), testLogger)

	_, err := o.Run(context.Background(), "nope")
	if !errors.Is(err, news.ErrUnknownSource) {
		t.Errorf("err = %v, want ErrUnknownSource", err)
	}
	if o.Running() {
		t.Error("rejected run should not leave the guard set")
	}
	if o.LastResult() != nil {
		t.Error("no run happened, last result should be nil")
	}
}

func TestOrchestratorRejectsOverlap(t *testing.T) {
	fetch := testFetcher()
	defer fetch.Close()
	o := NewOrchestrator(fetch, &fakeStore{}, testCrawlConfig(), testLogger)

	// Simulate an active run holding the guard.
	if !o.running.CompareAndSwap(false, true) {
		t.Fatal("guard unexpectedly set")
	}
	defer o.running.Store(false)

	_, err := o.Run(context.Background(), FamilyGeneric)
	if !errors.Is(err, news.ErrRunInProgress) {
		t.Errorf("err = %v, want ErrRunInProgress", err)
	}
}
