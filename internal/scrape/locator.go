package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/sporhub/newscrawler/internal/sources"
)

// parseDoc parses HTML text into a goquery document. The underlying
// html.Node tree is shared with the XPath locator path.
func parseDoc(htmlText string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlText))
}

func docRoot(doc *goquery.Document) *html.Node {
	if len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

// findAll returns all elements in doc matching the locator.
func findAll(doc *goquery.Document, loc sources.Locator) []*html.Node {
	if loc.IsZero() {
		return nil
	}
	if loc.Type == sources.XPath {
		return queryXPath(docRoot(doc), loc.Expr)
	}
	return doc.Find(loc.Expr).Nodes
}

// findAllIn returns descendants of n matching the locator.
func findAllIn(n *html.Node, loc sources.Locator) []*html.Node {
	if n == nil || loc.IsZero() {
		return nil
	}
	if loc.Type == sources.XPath {
		return queryXPath(n, loc.Expr)
	}
	return goquery.NewDocumentFromNode(n).Find(loc.Expr).Nodes
}

func findFirst(doc *goquery.Document, loc sources.Locator) *html.Node {
	nodes := findAll(doc, loc)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func findFirstIn(n *html.Node, loc sources.Locator) *html.Node {
	nodes := findAllIn(n, loc)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func queryXPath(n *html.Node, expr string) []*html.Node {
	if n == nil {
		return nil
	}
	nodes, err := htmlquery.QueryAll(n, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// nodeText returns the trimmed text content of a node.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
}

// nodeAttr returns the value of the named attribute, or "".
func nodeAttr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isAnchor(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == "a"
}

// firstDescendant returns the first descendant element with the given
// tag name.
func firstDescendant(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(n).Find(tag)
	if len(sel.Nodes) == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// imageSrc extracts an image URL from an img element, preferring src
// and falling back to data-src for lazy-loaded images.
func imageSrc(img *html.Node) string {
	if src := nodeAttr(img, "src"); src != "" {
		return src
	}
	return nodeAttr(img, "data-src")
}

// metaOGImage returns the page's og:image content, or "".
func metaOGImage(doc *goquery.Document) string {
	val, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	return strings.TrimSpace(val)
}
