package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sporhub/newscrawler/internal/news"
)

type fakeBackfillStore struct {
	fakeStore
	recent  []news.Headline
	updates map[string]string
}

func (f *fakeBackfillStore) ListRecent(ctx context.Context, limit int) ([]news.Headline, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeBackfillStore) UpdateContent(ctx context.Context, id, content string) error {
	if f.updates == nil {
		f.updates = make(map[string]string)
	}
	f.updates[id] = content
	return nil
}

func TestNeedsBackfill(t *testing.T) {
	long := strings.Repeat("uzun makale metni ", 10)
	tests := []struct {
		name string
		h    news.Headline
		want bool
	}{
		{"empty body", news.Headline{Title: "T", Content: ""}, true},
		{"short body", news.Headline{Title: "T", Content: "kısa"}, true},
		{"body equals title", news.Headline{Title: long, Content: long}, true},
		{"raw markup", news.Headline{Title: "T", Content: long + " <div class=x>"}, true},
		{"script leak", news.Headline{Title: "T", Content: long + " document.write"}, true},
		{"healthy body", news.Headline{Title: "T", Content: long}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBackfill(&tt.h); got != tt.want {
				t.Errorf("needsBackfill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackfillRepairsGenericSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		<div class="spot">Özet cümlesi.</div>
		<div class="news-content">`+strings.Repeat("Yenilenmiş gövde metni. ", 10)+`</div>
		</body></html>`)
	}))
	defer srv.Close()

	store := &fakeBackfillStore{
		recent: []news.Headline{
			{ID: "broken", Title: "Bozuk haber", Content: "kısa", SourceURL: srv.URL + "/haber/1"},
			{ID: "fine", Title: "Sağlam haber", Content: strings.Repeat("sağlam içerik ", 20), SourceURL: srv.URL + "/haber/2"},
		},
	}

	fetch := testFetcher()
	defer fetch.Close()
	bf := NewBackfiller(fetch, store, testCrawlConfig(), testLogger)

	res, err := bf.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Examined != 2 || res.Suspect != 1 || res.Repaired != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}

	got, ok := store.updates["broken"]
	if !ok {
		t.Fatal("broken headline not updated")
	}
	if !strings.HasPrefix(got, "Özet cümlesi.") {
		t.Errorf("repaired body should start with the spot lead, got %q", got)
	}
	if !strings.Contains(got, "Yenilenmiş gövde metni.") {
		t.Errorf("repaired body = %q", got)
	}
	if _, ok := store.updates["fine"]; ok {
		t.Error("healthy headline should not be touched")
	}
}

func TestBackfillRespectsLimit(t *testing.T) {
	store := &fakeBackfillStore{
		recent: []news.Headline{
			{ID: "a", Title: "A", Content: strings.Repeat("x ", 100)},
			{ID: "b", Title: "B", Content: strings.Repeat("y ", 100)},
		},
	}
	fetch := testFetcher()
	defer fetch.Close()
	bf := NewBackfiller(fetch, store, testCrawlConfig(), testLogger)

	res, err := bf.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Examined != 1 {
		t.Errorf("examined = %d, want 1", res.Examined)
	}
}
