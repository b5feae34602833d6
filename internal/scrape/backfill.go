package scrape

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/fetcher"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/sources"
)

// BackfillStore extends the crawl store with the read and update
// operations the repair pass needs.
type BackfillStore interface {
	Store
	ListRecent(ctx context.Context, limit int) ([]news.Headline, error)
	UpdateContent(ctx context.Context, id, content string) error
}

// BackfillResult summarizes one repair pass.
type BackfillResult struct {
	Examined int
	Suspect  int
	Repaired int
	Failed   int
}

// Backfiller re-fetches stored headlines whose body looks truncated or
// broken and replaces it with a fresh detail-page extraction.
type Backfiller struct {
	fetch  *fetcher.Client
	enrich *Enricher
	store  BackfillStore
	cfg    config.CrawlConfig
	logger *slog.Logger
}

// NewBackfiller creates a content repair pass over the given store.
func NewBackfiller(fetch *fetcher.Client, store BackfillStore, cfg config.CrawlConfig, logger *slog.Logger) *Backfiller {
	return &Backfiller{
		fetch:  fetch,
		enrich: NewEnricher(fetch, logger),
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "backfill"),
	}
}

// markupFragments are leftovers of broken extraction that should never
// appear in a stored body.
var markupFragments = []string{"<div", "<p>", "</p>", "&nbsp;", "function(", "document."}

// needsBackfill reports whether a stored headline's body is suspect:
// empty, shorter than a plausible article, identical to the title, or
// containing raw markup.
func needsBackfill(h *news.Headline) bool {
	body := strings.TrimSpace(h.Content)
	if body == "" {
		return true
	}
	if len([]rune(body)) < 100 {
		return true
	}
	if strings.EqualFold(body, strings.TrimSpace(h.Title)) {
		return true
	}
	for _, frag := range markupFragments {
		if strings.Contains(body, frag) {
			return true
		}
	}
	return false
}

// Run examines up to limit recent headlines and repairs the suspect
// ones. Individual failures are counted and the pass continues.
func (b *Backfiller) Run(ctx context.Context, limit int) (*BackfillResult, error) {
	headlines, err := b.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := &BackfillResult{Examined: len(headlines)}
	for i := range headlines {
		h := &headlines[i]
		if !needsBackfill(h) {
			continue
		}
		res.Suspect++

		body, err := b.refetch(ctx, h)
		if err != nil {
			res.Failed++
			b.logger.Warn("refetch failed", "url", h.SourceURL, "error", err)
			b.pause(ctx)
			continue
		}
		if body == "" || strings.EqualFold(body, h.Title) {
			res.Failed++
			b.logger.Warn("refetch produced no usable body", "url", h.SourceURL)
			b.pause(ctx)
			continue
		}

		if err := b.store.UpdateContent(ctx, h.ID, news.Clamp(body)); err != nil {
			res.Failed++
			b.logger.Warn("update failed", "id", h.ID, "error", err)
		} else {
			res.Repaired++
			b.logger.Info("content repaired", "id", h.ID, "url", h.SourceURL)
		}
		b.pause(ctx)
	}

	b.logger.Info("backfill finished",
		"examined", res.Examined,
		"suspect", res.Suspect,
		"repaired", res.Repaired,
		"failed", res.Failed)
	return res, nil
}

// refetch extracts a fresh body for the headline, using the original
// source's own strategy when its host is recognized and a generic
// selector sweep otherwise.
func (b *Backfiller) refetch(ctx context.Context, h *news.Headline) (string, error) {
	if src, ok := sources.ByHost(h.SourceURL); ok && src.FollowDetail {
		enr, err := b.enrich.Enrich(ctx, h.SourceURL, src)
		if err != nil {
			return "", err
		}
		return enr.Body, nil
	}
	return b.genericBody(ctx, h.SourceURL)
}

// genericBodySelectors covers the article-body containers of the known
// sites plus common CMS layouts, tried in order.
var genericBodySelectors = []string{
	".icerik",
	".news-single",
	".news-detail .news-content, .article-content",
	".haber-detay-icerik, .news-content",
	"article .content, .content-main",
}

// genericBody fetches the page and takes the first non-empty match
// from the selector sweep, with a spot lead prepended when present.
func (b *Backfiller) genericBody(ctx context.Context, pageURL string) (string, error) {
	dctx, cancel := b.fetch.DetailContext(ctx)
	defer cancel()

	htmlText, err := b.fetch.Get(dctx, pageURL)
	if err != nil {
		return "", err
	}
	doc, err := parseDoc(htmlText)
	if err != nil {
		return "", err
	}

	for _, sel := range genericBodySelectors {
		container := findFirst(doc, sources.CSSLoc(sel))
		if container == nil {
			continue
		}
		body := CleanBody(nodeText(container))
		if body == "" {
			continue
		}
		if spot := nodeText(findFirst(doc, sources.CSSLoc(".spot"))); spot != "" {
			body = CollapseWhitespace(spot) + "\n\n" + body
		}
		return body, nil
	}
	return "", nil
}

func (b *Backfiller) pause(ctx context.Context) {
	if b.cfg.ArticleDelay <= 0 {
		return
	}
	t := time.NewTimer(b.cfg.ArticleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
