package scrape

import "testing"

func TestResolveURL(t *testing.T) {
	base := "https://www.sporx.com/futbol"

	tests := []struct {
		name string
		raw  string
		base string
		want string
	}{
		{"empty", "", base, ""},
		{"absolute https", "https://other.com/x", base, "https://other.com/x"},
		{"absolute http", "http://other.com/x", base, "http://other.com/x"},
		{"rooted", "/haber/123", base, "https://www.sporx.com/haber/123"},
		{"bare relative", "haber/123", base, "https://www.sporx.com/haber/123"},
		{"base path ignored", "/top", "https://example.com/deep/page", "https://example.com/top"},
		{"malformed base keeps raw", "/x", "://bad", "/x"},
		{"hostless base keeps raw", "/x", "not-a-url", "/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.raw, tt.base); got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
			}
		})
	}
}
