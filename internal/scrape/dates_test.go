package scrape

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestParseDateTurkishLong(t *testing.T) {
	got := ParseDate("10 Haziran 2023, 14:30", testNow)
	want := time.Date(2023, time.June, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateTurkishLongNoTime(t *testing.T) {
	got := ParseDate("5 Aralık 2022", testNow)
	want := time.Date(2022, time.December, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateNumeric(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"10.06.2023 14:30", time.Date(2023, time.June, 10, 14, 30, 0, 0, time.UTC)},
		{"10.06.2023", time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.text, testNow); !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseDateFallsBackToNow(t *testing.T) {
	for _, text := range []string{"", "dün", "June 10, 2023", "not a date"} {
		if got := ParseDate(text, testNow); !got.Equal(testNow) {
			t.Errorf("ParseDate(%q) = %v, want now", text, got)
		}
	}
}

func TestCleanBody(t *testing.T) {
	in := "GALERİ  Maç sona erdi.   12.05.2024 14:30  Facebook'ta Paylaş Yazdır"
	want := "Maç sona erdi."
	if got := CleanBody(in); got != want {
		t.Errorf("CleanBody = %q, want %q", got, want)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a\n\tb   c "); got != "a b c" {
		t.Errorf("got %q", got)
	}
}
