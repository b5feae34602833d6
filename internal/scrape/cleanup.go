package scrape

import (
	"regexp"
	"strings"
)

// Boilerplate fragments the target sites mix into article bodies:
// gallery labels, share buttons, print links.
var boilerplateFragments = []string{
	"GALERİ",
	`Facebook"ta Paylaş`,
	"Facebook'ta Paylaş",
	"Twitterda Paylaş",
	"Yazdır",
}

// Date/time stamps accidentally captured as body text, e.g. "12.05.2024 14:30".
var dateTimePattern = regexp.MustCompile(`\d+\.\d+\.\d+\s+\d+:\d+`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace reduces runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// CleanBody strips known boilerplate and stray timestamps from body
// text and collapses whitespace.
func CleanBody(s string) string {
	for _, frag := range boilerplateFragments {
		s = strings.ReplaceAll(s, frag, "")
	}
	s = dateTimePattern.ReplaceAllString(s, "")
	return CollapseWhitespace(s)
}
