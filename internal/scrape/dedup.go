package scrape

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sporhub/newscrawler/internal/news"
)

// Store is the persistence surface the crawler needs.
type Store interface {
	Insert(ctx context.Context, h *news.Headline) error
	// Exists reports whether a headline with the given title
	// (case-insensitive) or exact source URL is already stored. An
	// empty title matches on URL only.
	Exists(ctx context.Context, title, sourceURL string) (bool, error)
}

// RunCache tracks titles and URLs seen within a single crawl run so
// that overlapping source listings do not produce duplicate store
// lookups or inserts. It is created fresh per run and is not safe for
// concurrent use.
type RunCache struct {
	titles map[string]struct{}
	urls   map[string]struct{}
}

// NewRunCache creates an empty per-run duplicate cache.
func NewRunCache() *RunCache {
	return &RunCache{
		titles: make(map[string]struct{}),
		urls:   make(map[string]struct{}),
	}
}

// Seen reports whether the title or URL was already encountered this
// run. Title matching is case-insensitive.
func (c *RunCache) Seen(title, sourceURL string) bool {
	if title != "" {
		if _, ok := c.titles[strings.ToLower(title)]; ok {
			return true
		}
	}
	if sourceURL != "" {
		if _, ok := c.urls[sourceURL]; ok {
			return true
		}
	}
	return false
}

// Mark records the title and URL as encountered.
func (c *RunCache) Mark(title, sourceURL string) {
	if title != "" {
		c.titles[strings.ToLower(title)] = struct{}{}
	}
	if sourceURL != "" {
		c.urls[sourceURL] = struct{}{}
	}
}

// SeenURL reports whether the exact URL was already encountered this
// run.
func (c *RunCache) SeenURL(sourceURL string) bool {
	_, ok := c.urls[sourceURL]
	return ok
}

// Gate decides whether a candidate headline should be persisted,
// consulting the per-run cache first and the store second.
type Gate struct {
	store  Store
	logger *slog.Logger
}

// NewGate creates a duplicate gate backed by the given store.
func NewGate(store Store, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: logger.With("component", "dedup"),
	}
}

// ShouldPersist reports whether the headline identified by title and
// sourceURL is new. The cache is marked regardless of the outcome so a
// failed insert is not retried within the run. A store lookup failure
// is logged and the headline treated as new; the unique index on the
// source URL catches true duplicates at insert time.
func (g *Gate) ShouldPersist(ctx context.Context, cache *RunCache, title, sourceURL string) bool {
	defer cache.Mark(title, sourceURL)

	if cache.Seen(title, sourceURL) {
		return false
	}
	exists, err := g.store.Exists(ctx, title, sourceURL)
	if err != nil {
		g.logger.Warn("duplicate lookup failed, persisting anyway", "url", sourceURL, "error", err)
		return true
	}
	return !exists
}
