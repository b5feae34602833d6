package scrape

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/sources"
)

const (
	// maxTitleLength truncates titles taken from a container's own text,
	// which otherwise tends to capture unrelated page chrome.
	maxTitleLength = 100

	// minAnchorTextLength filters navigation links out of the anchor-scan
	// fallback. Real headline links carry longer text.
	minAnchorTextLength = 10
)

// Extractor enumerates candidate headline blocks on a listing page and
// pulls title, link, summary, image and date text out of each.
type Extractor struct {
	maxPerSource int
	logger       *slog.Logger
}

// NewExtractor creates an extractor capped at maxPerSource candidates
// per listing page.
func NewExtractor(maxPerSource int, logger *slog.Logger) *Extractor {
	return &Extractor{
		maxPerSource: maxPerSource,
		logger:       logger.With("component", "extractor"),
	}
}

// Candidates extracts headline candidates from a listing document using
// the source's locators. Links and image URLs are returned raw, not yet
// resolved. Candidates missing a title or a link are discarded.
func (e *Extractor) Candidates(doc *goquery.Document, src *sources.Source) []news.Candidate {
	containers := findAll(doc, src.Locators.Container)
	if len(containers) == 0 {
		if !src.AnchorFallback {
			e.logger.Warn("no containers matched", "source", src.Name, "locator", src.Locators.Container.Expr)
			return nil
		}
		e.logger.Warn("no containers matched, scanning anchors", "source", src.Name)
		return e.anchorFallback(doc, src)
	}

	var cands []news.Candidate
	for _, container := range containers {
		if len(cands) >= e.maxPerSource {
			break
		}

		title := nodeText(findFirstIn(container, src.Locators.Title))
		if title == "" {
			// Markup drift: the container itself may carry the headline
			// text.
			title = truncate(nodeText(container), maxTitleLength)
		}

		link := e.containerLink(container)
		if title == "" || link == "" {
			continue
		}

		cand := news.Candidate{
			Title:    title,
			Link:     link,
			Summary:  nodeText(findFirstIn(container, src.Locators.Summary)),
			DateText: nodeText(findFirstIn(container, src.Locators.Date)),
		}
		if img := e.containerImage(container, src); img != nil {
			cand.Image = imageSrc(img)
		}
		cands = append(cands, cand)
	}
	return cands
}

// containerImage finds a candidate's thumbnail via the source's image
// locator, or any descendant img when the source does not configure one.
func (e *Extractor) containerImage(container *html.Node, src *sources.Source) *html.Node {
	if !src.Locators.Image.IsZero() {
		return findFirstIn(container, src.Locators.Image)
	}
	return firstDescendant(container, "img")
}

// containerLink finds a candidate's source link: the container's own
// href when the container is an anchor, otherwise the first descendant
// anchor's href.
func (e *Extractor) containerLink(container *html.Node) string {
	if isAnchor(container) {
		return nodeAttr(container, "href")
	}
	return nodeAttr(firstDescendant(container, "a"), "href")
}

// anchorFallback is the best-effort path taken when a source's
// container locator matches nothing: scan every hyperlink and take the
// first ones whose link text is long enough to be a headline.
func (e *Extractor) anchorFallback(doc *goquery.Document, src *sources.Source) []news.Candidate {
	var cands []news.Candidate
	for _, a := range findAll(doc, sources.CSSLoc("a")) {
		if len(cands) >= e.maxPerSource {
			break
		}
		text := nodeText(a)
		href := nodeAttr(a, "href")
		if href == "" || len([]rune(text)) <= minAnchorTextLength {
			continue
		}
		cand := news.Candidate{
			Title: truncate(text, maxTitleLength),
			Link:  href,
		}
		if img := firstDescendant(a, "img"); img != nil {
			cand.Image = imageSrc(img)
		}
		cands = append(cands, cand)
	}
	if len(cands) > 0 {
		e.logger.Info("anchor fallback produced candidates", "source", src.Name, "count", len(cands))
	}
	return cands
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
