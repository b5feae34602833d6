package scrape

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sporhub/newscrawler/internal/fetcher"
	"github.com/sporhub/newscrawler/internal/sources"
)

// Enrichment is the outcome of following a headline's link to its full
// article page. Title and URL are only set when the detail page
// replaced them (category-listing redirect).
type Enrichment struct {
	Body  string
	Image string
	Title string
	URL   string
}

// Enricher fetches a headline's detail page and extracts the complete
// body text, replacing the listing's short summary.
type Enricher struct {
	fetch  *fetcher.Client
	logger *slog.Logger
}

// NewEnricher creates a detail-page enricher.
func NewEnricher(fetch *fetcher.Client, logger *slog.Logger) *Enricher {
	return &Enricher{
		fetch:  fetch,
		logger: logger.With("component", "enricher"),
	}
}

// Enrich fetches link and extracts body content according to the
// source's body strategy. Fetch and parse failures are returned to the
// caller, which falls back to the listing summary rather than
// discarding the headline.
func (en *Enricher) Enrich(ctx context.Context, link string, src *sources.Source) (*Enrichment, error) {
	dctx, cancel := en.fetch.DetailContext(ctx)
	defer cancel()

	htmlText, err := en.fetch.Get(dctx, link)
	if err != nil {
		return nil, err
	}
	doc, err := parseDoc(htmlText)
	if err != nil {
		return nil, err
	}

	enr := &Enrichment{}

	switch src.Strategy {
	case sources.BodyStructuredWithImages:
		enr.Body = en.structuredBody(doc, link, src, "")

	case sources.BodyListingRedirect:
		doc, link = en.followListingRedirect(ctx, doc, link, src, enr)
		spot := nodeText(findFirst(doc, src.Locators.Spot))
		enr.Body = en.structuredBody(doc, link, src, spot)

	default: // sources.BodyPlainWithLead
		body := ""
		if container := findFirst(doc, src.Locators.DetailBody); container != nil {
			body = CleanBody(nodeText(container))
		}
		if spot := nodeText(findFirst(doc, src.Locators.Spot)); spot != "" && body != "" {
			// The lead stays its own paragraph, even when the body
			// repeats it.
			body = CollapseWhitespace(spot) + "\n\n" + body
		}
		enr.Body = body
	}

	enr.Image = en.detailImage(doc, link)
	return enr, nil
}

// followListingRedirect detects category/tag listings posing as detail
// pages and follows the first real article link once. A listing page is
// never treated as a leaf article. On any failure the original page is
// kept.
func (en *Enricher) followListingRedirect(ctx context.Context, doc *goquery.Document, link string, src *sources.Source, enr *Enrichment) (*goquery.Document, string) {
	if !strings.Contains(link, sources.ListingRedirectMarker) {
		return doc, link
	}

	var articleURL string
	for _, a := range findAll(doc, src.Locators.ListingLinks) {
		if href := nodeAttr(a, "href"); href != "" {
			articleURL = ResolveURL(href, link)
			break
		}
	}
	if articleURL == "" || articleURL == link {
		en.logger.Warn("category listing has no article links", "url", link)
		return doc, link
	}

	dctx, cancel := en.fetch.DetailContext(ctx)
	defer cancel()
	htmlText, err := en.fetch.Get(dctx, articleURL)
	if err != nil {
		en.logger.Warn("redirect target fetch failed", "url", articleURL, "error", err)
		return doc, link
	}
	articleDoc, err := parseDoc(htmlText)
	if err != nil {
		en.logger.Warn("redirect target parse failed", "url", articleURL, "error", err)
		return doc, link
	}
	if findFirst(articleDoc, src.Locators.DetailBody) == nil {
		return doc, link
	}

	enr.URL = articleURL
	if title := nodeText(findFirst(articleDoc, sources.CSSLoc("h1"))); title != "" {
		enr.Title = title
	}
	return articleDoc, articleURL
}

// structuredBody walks the body container's paragraphs in order and
// interleaves discovered image URLs as [url] markers. An optional spot
// lead precedes everything.
func (en *Enricher) structuredBody(doc *goquery.Document, pageURL string, src *sources.Source, spot string) string {
	images := en.bodyImages(doc, pageURL, src)

	container := findFirst(doc, src.Locators.DetailText)
	if container == nil {
		container = findFirst(doc, src.Locators.DetailBody)
	}
	if container == nil {
		return ""
	}

	var paragraphs []string
	for _, p := range findAllIn(container, sources.CSSLoc("p")) {
		if text := nodeText(p); text != "" {
			paragraphs = append(paragraphs, CollapseWhitespace(text))
		}
	}

	var body string
	if len(paragraphs) > 0 {
		body = interleaveImages(paragraphs, images)
	} else {
		// No paragraph markup: take the whole container text cleaned,
		// leading image first, remaining images appended.
		text := CleanBody(nodeText(container))
		if text == "" {
			return ""
		}
		parts := make([]string, 0, len(images)+1)
		if len(images) > 0 {
			parts = append(parts, "["+images[0]+"]")
		}
		parts = append(parts, text)
		for i := 1; i < len(images); i++ {
			parts = append(parts, "["+images[i]+"]")
		}
		body = strings.Join(parts, "\n\n")
	}

	if spot = CollapseWhitespace(spot); spot != "" {
		body = spot + "\n\n" + body
	}
	return body
}

// bodyImages collects inline image URLs from the article body plus the
// page's og:image as an additional leading candidate, resolved and
// de-duplicated in document order.
func (en *Enricher) bodyImages(doc *goquery.Document, pageURL string, src *sources.Source) []string {
	var images []string
	seen := make(map[string]struct{})
	add := func(raw string) {
		u := ResolveURL(raw, pageURL)
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		images = append(images, u)
	}

	if og := metaOGImage(doc); og != "" {
		add(og)
	}
	for _, img := range findAll(doc, src.Locators.BodyImages) {
		add(imageSrc(img))
	}
	return images
}

// interleaveImages joins paragraphs with blank lines, placing a [url]
// marker before the first paragraph and after every second paragraph,
// with any leftover images appended at the end. Approximates in-article
// image placement without a rich-text model.
func interleaveImages(paragraphs, images []string) string {
	parts := make([]string, 0, len(paragraphs)+len(images))
	idx := 0
	if len(images) > 0 {
		parts = append(parts, "["+images[0]+"]")
		idx = 1
	}
	for i, p := range paragraphs {
		parts = append(parts, p)
		if (i+1)%2 == 0 && idx < len(images) {
			parts = append(parts, "["+images[idx]+"]")
			idx++
		}
	}
	for ; idx < len(images); idx++ {
		parts = append(parts, "["+images[idx]+"]")
	}
	return strings.Join(parts, "\n\n")
}

// detailImage finds a representative image on the detail page, used
// when the listing entry had none: og:image first, then common article
// image blocks.
func (en *Enricher) detailImage(doc *goquery.Document, pageURL string) string {
	if og := metaOGImage(doc); og != "" {
		return ResolveURL(og, pageURL)
	}
	var img *html.Node
	for _, n := range findAll(doc, sources.CSSLoc(".news-image img, .haber-image img, .article-image img")) {
		img = n
		break
	}
	if src := imageSrc(img); src != "" {
		return ResolveURL(src, pageURL)
	}
	return ""
}
