// Package sources holds the static registry of news sites the crawler
// knows how to scrape. Descriptors are defined at process start and
// immutable during a run.
package sources

import "strings"

// Sport category identifiers, matching the sport table of the
// surrounding backend.
const (
	SportFootball   = "909a0f7f-54f7-4a47-b47f-5d074b88bcc6"
	SportBasketball = "5dc3ebe8-3111-47e3-86d4-648cc1c1df98"
	SportVolleyball = "c2b1a6d4-9e35-4f1b-8a02-7f60d3c4e981"
)

// ListingRedirectMarker identifies category/tag listing URLs that must
// never be treated as leaf articles.
const ListingRedirectMarker = "/etiket-"

// LocatorType selects the query language of a Locator.
type LocatorType string

const (
	CSS   LocatorType = "css"
	XPath LocatorType = "xpath"
)

// Locator is a structural rule for finding elements in a page.
type Locator struct {
	Type LocatorType
	Expr string
}

// CSSLoc builds a CSS selector locator.
func CSSLoc(expr string) Locator { return Locator{Type: CSS, Expr: expr} }

// XPathLoc builds an XPath locator.
func XPathLoc(expr string) Locator { return Locator{Type: XPath, Expr: expr} }

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool { return l.Expr == "" }

// BodyStrategy selects how a source's detail pages are turned into
// body text.
type BodyStrategy int

const (
	// BodyPlainWithLead takes the body container's full text, with an
	// optional lead paragraph placed before it.
	BodyPlainWithLead BodyStrategy = iota

	// BodyStructuredWithImages walks body paragraphs in order and
	// interleaves discovered image URLs as [url] markers.
	BodyStructuredWithImages

	// BodyListingRedirect detects category/tag listings posing as
	// detail pages, follows the first real article link once, then
	// extracts like BodyStructuredWithImages.
	BodyListingRedirect
)

func (s BodyStrategy) String() string {
	switch s {
	case BodyPlainWithLead:
		return "plain_with_lead"
	case BodyStructuredWithImages:
		return "structured_with_images"
	case BodyListingRedirect:
		return "listing_redirect"
	default:
		return "unknown"
	}
}

// LocatorSet describes how to pull a headline out of one site's markup.
type LocatorSet struct {
	// Listing-page locators.
	Container Locator
	Title     Locator
	Summary   Locator
	Image     Locator
	Date      Locator

	// Detail-page locators.
	DetailBody   Locator // body container
	DetailText   Locator // paragraph-bearing block, preferred over DetailBody
	BodyImages   Locator // inline image elements within the body
	Spot         Locator // lead paragraph
	ListingLinks Locator // article links inside a category/tag listing
}

// Source describes one listing site to scrape.
type Source struct {
	Name         string
	URL          string
	SportID      string
	FollowDetail bool
	Strategy     BodyStrategy
	DefaultImage string
	// AnchorFallback enables the best-effort anchor scan when the
	// container locator matches nothing. Target markup drifts; this
	// path is not a guarantee.
	AnchorFallback bool
	Locators       LocatorSet
}

// Generic returns the multi-site family: general sports portals whose
// listings carry enough summary text to persist without a detail fetch.
func Generic() []Source {
	return []Source{
		{
			Name:    "NTVSpor",
			URL:     "https://www.ntvspor.net/",
			SportID: SportFootball,
			Locators: LocatorSet{
				Container: CSSLoc(".category-news article, .news-item, .list-item"),
				Title:     CSSLoc("h2, .news-title, .title"),
				Summary:   CSSLoc(".spot, .summary, .excerpt"),
				Image:     CSSLoc("img"),
				Date:      CSSLoc(".date, .time, .news-date, time"),
			},
		},
		{
			Name:    "Fanatik",
			URL:     "https://www.fanatik.com.tr/futbol",
			SportID: SportFootball,
			Locators: LocatorSet{
				Container: CSSLoc(".card, .news-card, .news-list-item"),
				Title:     CSSLoc("h3, .card-title, .title"),
				Summary:   CSSLoc(".card-text, .summary, .excerpt"),
				Image:     CSSLoc("img, .card-img-top"),
				Date:      CSSLoc(".date, .time, .publish-date"),
			},
		},
		{
			Name:    "TRTSpor Basketbol",
			URL:     "https://www.trtspor.com.tr/haber/basketbol/",
			SportID: SportBasketball,
			Locators: LocatorSet{
				Container: CSSLoc(".news-list-item, .card, article"),
				Title:     CSSLoc("h2, h3, .title"),
				Summary:   CSSLoc(".summary, .excerpt, .description"),
				Image:     CSSLoc("img"),
				Date:      XPathLoc("//time | //*[contains(@class, 'date')]"),
			},
		},
	}
}

// Konyaspor returns the team-news family: the club's official site plus
// the Konhaber listings, all enriched from their detail pages.
func Konyaspor() []Source {
	konhaber := func(name, url, sportID, linkPattern string) Source {
		return Source{
			Name:         name,
			URL:          url,
			SportID:      sportID,
			FollowDetail: true,
			Strategy:     BodyListingRedirect,
			DefaultImage: "https://www.konyaspor.org.tr/images/logo.png",
			Locators: LocatorSet{
				Container:    CSSLoc(linkPattern + `, a[href*="/spor/"], .news-item`),
				Title:        CSSLoc("h2, h3, a.title"),
				Summary:      CSSLoc("p, .spot, .summary"),
				Image:        CSSLoc("img"),
				Date:         CSSLoc(".date"),
				DetailBody:   CSSLoc(".icerik"),
				BodyImages:   CSSLoc(".havadis-resim img, .havadis-icerik img, .icerik img"),
				Spot:         CSSLoc(".spot"),
				ListingLinks: CSSLoc(".swiper-slide a, .news-item a, .haber-card a, .news-list a"),
			},
		}
	}

	return []Source{
		{
			Name:           "Konyaspor Resmi Site",
			URL:            "https://www.konyaspor.org.tr/",
			SportID:        SportFootball,
			FollowDetail:   true,
			Strategy:       BodyStructuredWithImages,
			DefaultImage:   "https://www.konyaspor.org.tr/images/logo.png",
			AnchorFallback: true,
			Locators: LocatorSet{
				Container:  CSSLoc(".haberler-ve-duyurular a, article, .news-list a, .news-item, .haber-item"),
				Title:      CSSLoc("h3, h4, .title, .news-title"),
				Summary:    CSSLoc("p, .summary, .description"),
				Image:      CSSLoc("img"),
				Date:       CSSLoc(".date, time"),
				DetailBody: CSSLoc(".news-single"),
				DetailText: CSSLoc(".detail-text"),
				BodyImages: CSSLoc(".news-single img, .detail-big-image img"),
			},
		},
		konhaber("Konhaber Konyaspor",
			"https://www.konhaber.com/spor/konyaspor", SportFootball, `a[href*="/konyaspor_"]`),
		konhaber("Konhaber Konyaspor Basketbol",
			"https://www.konhaber.com/spor/konyaspor_basketbol", SportBasketball, `a[href*="/konyaspor_"]`),
		konhaber("Konhaber 1922 Konyaspor",
			"https://www.konhaber.com/spor/1922_konyaspor", SportFootball, `a[href*="/1922_konyaspor/"]`),
	}
}

// SporxCategory is one category listing on sporx.com.
type SporxCategory struct {
	Name    string
	URL     string
	SportID string
}

// SporxFamily describes the sporx.com crawler: listings yield only
// links, everything else comes from the detail pages.
type SporxFamily struct {
	Categories   []SporxCategory
	ListingLinks Locator
	Title        Locator
	Body         Locator
	Image        Locator
	Date         Locator
}

// Sporx returns the sporx.com family descriptor.
func Sporx() SporxFamily {
	return SporxFamily{
		Categories: []SporxCategory{
			{Name: "Sporx Futbol", URL: "https://www.sporx.com/futbol/", SportID: SportFootball},
			{Name: "Sporx Basketbol", URL: "https://www.sporx.com/basketbol/", SportID: SportBasketball},
			{Name: "Sporx Voleybol", URL: "https://www.sporx.com/voleybol/", SportID: SportVolleyball},
		},
		ListingLinks: CSSLoc(".news-list-item a, .news-item a, .card-news a, article a, .headline a"),
		Title:        CSSLoc(".news-detail h1, .article-title h1, .story-title, .content-title, h1.title"),
		Body:         CSSLoc(".news-detail .news-content, .article-body, .story-content, .content-text, .article-text"),
		Image:        CSSLoc(".news-detail .news-img img, .article-img img, .story-image img, .content-image img, article figure img"),
		Date:         CSSLoc(".news-detail .news-date"),
	}
}

// ByHost finds the first detail-capable source whose host appears in
// rawURL. Used by the content backfill to pick an extraction strategy
// for an already-stored headline.
func ByHost(rawURL string) (*Source, bool) {
	for _, src := range Konyaspor() {
		host := hostOf(src.URL)
		if host != "" && strings.Contains(rawURL, host) {
			s := src
			return &s, true
		}
	}
	return nil, false
}

func hostOf(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimPrefix(trimmed, "www.")
}
