package news

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength caps stored body text, matching the news table's column size.
const MaxContentLength = 5000

// Headline is a persisted news item.
type Headline struct {
	ID          string    `bson:"_id,omitempty"  json:"id,omitempty"`
	Title       string    `bson:"title"          json:"title"`
	Content     string    `bson:"content"        json:"content"`
	SourceURL   string    `bson:"source_url"     json:"source_url"`
	ImageURL    string    `bson:"image_url"      json:"image_url"`
	PublishedAt time.Time `bson:"published_date" json:"published_date"`
	SportID     string    `bson:"sport_id"       json:"sport_id"`
	CreatedAt   time.Time `bson:"created_at"     json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"     json:"updated_at"`
}

// Clamp truncates body text to at most MaxContentLength bytes without
// splitting a rune. The stored string must stay valid UTF-8.
func Clamp(s string) string {
	if len(s) <= MaxContentLength {
		return s
	}
	n := MaxContentLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ClampContent truncates the body to MaxContentLength.
func (h *Headline) ClampContent() {
	h.Content = Clamp(h.Content)
}

// Candidate is a headline extracted from a listing page, before URL
// resolution, enrichment and deduplication. Link and Image are raw
// attribute values as found in the markup.
type Candidate struct {
	Title    string
	Link     string
	Summary  string
	Image    string
	DateText string
}

// Valid reports whether the candidate can become a Headline. Title and
// link are the only two fields whose absence invalidates a candidate.
func (c *Candidate) Valid() bool {
	return strings.TrimSpace(c.Title) != "" && strings.TrimSpace(c.Link) != ""
}

// SourceResult counts crawl outcomes for a single source. Failed
// counts items that errored, plus the listing itself when it could
// not be fetched.
type SourceResult struct {
	Source    string `json:"source"`
	Processed int    `json:"processed"`
	Added     int    `json:"added"`
	Failed    int    `json:"failed,omitempty"`
}

// RunResult aggregates crawl outcomes across sources and families.
// It is ephemeral: returned to the caller and logged, never persisted.
type RunResult struct {
	Processed int            `json:"processed"`
	Added     int            `json:"added"`
	Sources   []SourceResult `json:"sources,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// Absorb folds a per-source result into the aggregate.
func (r *RunResult) Absorb(sr SourceResult) {
	r.Processed += sr.Processed
	r.Added += sr.Added
	r.Sources = append(r.Sources, sr)
}
