package scrape

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/fetcher"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/sources"
)

// Crawler runs the per-source scrape pipeline: fetch a listing,
// extract candidates, enrich from detail pages, and persist the
// headlines that pass the duplicate gate.
type Crawler struct {
	fetch  *fetcher.Client
	ext    *Extractor
	enrich *Enricher
	gate   *Gate
	store  Store
	cfg    config.CrawlConfig
	logger *slog.Logger
}

// NewCrawler wires the crawl pipeline together.
func NewCrawler(fetch *fetcher.Client, store Store, cfg config.CrawlConfig, logger *slog.Logger) *Crawler {
	return &Crawler{
		fetch:  fetch,
		ext:    NewExtractor(cfg.MaxArticlesPerSource, logger),
		enrich: NewEnricher(fetch, logger),
		gate:   NewGate(store, logger),
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "crawler"),
	}
}

// CrawlSource scrapes one listing-first source. A listing failure
// aborts the source; a failure on an individual candidate is counted
// and the remaining candidates still run.
func (c *Crawler) CrawlSource(ctx context.Context, src *sources.Source, cache *RunCache) (news.SourceResult, error) {
	res := news.SourceResult{Source: src.Name}
	log := c.logger.With("source", src.Name)

	lctx, cancel := c.fetch.ListingContext(ctx)
	htmlText, err := c.fetch.Get(lctx, src.URL)
	cancel()
	if err != nil {
		res.Failed++
		return res, &news.ExtractError{Source: src.Name, URL: src.URL, Err: err}
	}
	doc, err := parseDoc(htmlText)
	if err != nil {
		res.Failed++
		return res, &news.ExtractError{Source: src.Name, URL: src.URL, Err: err}
	}

	candidates := c.ext.Candidates(doc, src)
	log.Info("listing extracted", "candidates", len(candidates))

	for i := range candidates {
		cand := &candidates[i]
		if !cand.Valid() {
			continue
		}
		link := ResolveURL(cand.Link, src.URL)
		if link == "" {
			continue
		}
		res.Processed++

		if !c.gate.ShouldPersist(ctx, cache, cand.Title, link) {
			log.Debug("duplicate skipped", "title", cand.Title)
			c.pause(ctx, c.cfg.ArticleDelay)
			continue
		}

		h, fresh := c.buildHeadline(ctx, cand, link, src, cache, log)
		if !fresh {
			log.Debug("redirect target already stored", "title", h.Title, "url", h.SourceURL)
			c.pause(ctx, c.cfg.ArticleDelay)
			continue
		}
		if err := c.store.Insert(ctx, h); err != nil {
			res.Failed++
			log.Warn("insert failed", "title", h.Title, "error", err)
		} else {
			res.Added++
			log.Info("headline added", "title", h.Title)
		}

		c.pause(ctx, c.cfg.ArticleDelay)
	}
	return res, nil
}

// buildHeadline assembles a persistable headline from a listing
// candidate, enriching from the detail page when the source follows
// links. Enrichment failures degrade to the listing summary. Returns
// false when a listing redirect landed on an already-stored article.
func (c *Crawler) buildHeadline(ctx context.Context, cand *news.Candidate, link string, src *sources.Source, cache *RunCache, log *slog.Logger) (*news.Headline, bool) {
	h := &news.Headline{
		Title:       cand.Title,
		Content:     cand.Summary,
		SourceURL:   link,
		ImageURL:    ResolveURL(cand.Image, src.URL),
		PublishedAt: ParseDate(cand.DateText, time.Now()),
		SportID:     src.SportID,
	}

	if src.FollowDetail {
		enr, err := c.enrich.Enrich(ctx, link, src)
		if err != nil {
			log.Warn("detail enrichment failed, keeping summary", "url", link, "error", err)
		} else {
			if enr.Body != "" {
				h.Content = enr.Body
			}
			if h.ImageURL == "" && enr.Image != "" {
				h.ImageURL = enr.Image
			}
			if enr.Title != "" {
				h.Title = enr.Title
			}
			if enr.URL != "" {
				h.SourceURL = enr.URL
			}

			// A listing redirect replaced the headline's identity; the
			// target may already be stored under a different listing
			// link, so gate the changed fields again. Unchanged fields
			// are left out of the check: they were gated before
			// enrichment and would hit their own cache marks.
			gateTitle := h.Title
			if strings.EqualFold(gateTitle, cand.Title) {
				gateTitle = ""
			}
			gateURL := h.SourceURL
			if gateURL == link {
				gateURL = ""
			}
			if gateTitle != "" || gateURL != "" {
				if !c.gate.ShouldPersist(ctx, cache, gateTitle, gateURL) {
					return h, false
				}
				cache.Mark(h.Title, h.SourceURL)
			}
		}
	}

	if h.Content == "" {
		h.Content = h.Title
	}
	h.ClampContent()
	if h.ImageURL == "" {
		h.ImageURL = src.DefaultImage
	}
	return h, true
}

// CrawlSporxCategory scrapes one link-first category page: collect
// article links, skip known URLs before the detail fetch, then extract
// the headline entirely from the detail page.
func (c *Crawler) CrawlSporxCategory(ctx context.Context, fam *sources.SporxFamily, cat sources.SporxCategory, cache *RunCache) (news.SourceResult, error) {
	res := news.SourceResult{Source: cat.Name}
	log := c.logger.With("source", cat.Name)

	lctx, cancel := c.fetch.ListingContext(ctx)
	htmlText, err := c.fetch.Get(lctx, cat.URL)
	cancel()
	if err != nil {
		res.Failed++
		return res, &news.ExtractError{Source: cat.Name, URL: cat.URL, Err: err}
	}
	doc, err := parseDoc(htmlText)
	if err != nil {
		res.Failed++
		return res, &news.ExtractError{Source: cat.Name, URL: cat.URL, Err: err}
	}

	links := c.collectLinks(doc, cat.URL, fam.ListingLinks)
	log.Info("listing extracted", "links", len(links))

	for _, link := range links {
		if cache.SeenURL(link) {
			continue
		}
		if exists, err := c.store.Exists(ctx, "", link); err == nil && exists {
			cache.Mark("", link)
			continue
		}

		h, err := c.sporxDetail(ctx, fam, cat, link)
		if err != nil {
			res.Failed++
			log.Warn("detail fetch failed", "url", link, "error", err)
			c.pause(ctx, c.cfg.ArticleDelay)
			continue
		}
		res.Processed++

		if !c.gate.ShouldPersist(ctx, cache, h.Title, link) {
			log.Debug("duplicate skipped", "title", h.Title)
			c.pause(ctx, c.cfg.ArticleDelay)
			continue
		}

		if err := c.store.Insert(ctx, h); err != nil {
			res.Failed++
			log.Warn("insert failed", "title", h.Title, "error", err)
		} else {
			res.Added++
			log.Info("headline added", "title", h.Title)
		}

		c.pause(ctx, c.cfg.ArticleDelay)
	}
	return res, nil
}

// collectLinks gathers distinct resolved article URLs from a category
// listing, up to the per-source cap.
func (c *Crawler) collectLinks(doc *goquery.Document, baseURL string, loc sources.Locator) []string {
	var links []string
	seen := make(map[string]struct{})
	for _, a := range findAll(doc, loc) {
		href := nodeAttr(a, "href")
		if href == "" {
			continue
		}
		u := ResolveURL(href, baseURL)
		if u == "" || u == baseURL {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		links = append(links, u)
		if len(links) >= c.cfg.MaxArticlesPerSource {
			break
		}
	}
	return links
}

// sporxDetail builds a headline from a category article's detail page.
func (c *Crawler) sporxDetail(ctx context.Context, fam *sources.SporxFamily, cat sources.SporxCategory, link string) (*news.Headline, error) {
	dctx, cancel := c.fetch.DetailContext(ctx)
	defer cancel()

	htmlText, err := c.fetch.Get(dctx, link)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(htmlText)
	if err != nil {
		return nil, err
	}

	title := nodeText(findFirst(doc, fam.Title))
	if title == "" {
		return nil, &news.ExtractError{Source: cat.Name, URL: link, Err: news.ErrMissingTitle}
	}

	body := ""
	if container := findFirst(doc, fam.Body); container != nil {
		body = CleanBody(nodeText(container))
	}
	if body == "" {
		body = title
	}

	image := ""
	if img := findFirst(doc, fam.Image); img != nil {
		image = ResolveURL(imageSrc(img), link)
	}
	if image == "" {
		image = ResolveURL(metaOGImage(doc), link)
	}

	h := &news.Headline{
		Title:       title,
		Content:     body,
		SourceURL:   link,
		ImageURL:    image,
		PublishedAt: ParseDate(nodeText(findFirst(doc, fam.Date)), time.Now()),
		SportID:     cat.SportID,
	}
	h.ClampContent()
	return h, nil
}

// pause sleeps for d unless the context ends first. Applied after
// every article regardless of outcome to stay polite to the sites.
func (c *Crawler) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
