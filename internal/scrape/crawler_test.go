package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/news"
	"github.com/sporhub/newscrawler/internal/sources"
)

func testCrawlConfig() config.CrawlConfig {
	return config.CrawlConfig{
		MaxArticlesPerSource: 10,
		ArticleDelay:         0,
		SourceDelay:          0,
	}
}

const crawlerListingHTML = `<html><body>
<div class="news-item">
	<h2>Birinci haber başlığı</h2>
	<p class="spot">Birinci özet</p>
	<a href="/haber/1"><img src="/img/1.jpg"></a>
</div>
<div class="news-item">
	<h2>İkinci haber başlığı</h2>
	<p class="spot">İkinci özet</p>
	<a href="/haber/2"></a>
</div>
<div class="news-item">
	<h2>Linksiz haber atlanır</h2>
</div>
</body></html>`

func TestCrawlSourceListingOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, crawlerListingHTML)
	}))
	defer srv.Close()

	store := &fakeStore{}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"
	src.SportID = sources.SportFootball
	src.DefaultImage = "https://cdn/logo.png"

	res, err := c.CrawlSource(context.Background(), src, NewRunCache())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if res.Processed != 2 || res.Added != 2 || res.Failed != 0 {
		t.Fatalf("result = %+v, want processed=2 added=2", res)
	}

	first := store.headlines[0]
	if first.Title != "Birinci haber başlığı" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Content != "Birinci özet" {
		t.Errorf("content = %q, want listing summary", first.Content)
	}
	if first.SourceURL != srv.URL+"/haber/1" {
		t.Errorf("source url = %q", first.SourceURL)
	}
	if first.ImageURL != srv.URL+"/img/1.jpg" {
		t.Errorf("image = %q", first.ImageURL)
	}
	if first.SportID != sources.SportFootball {
		t.Errorf("sport id = %q", first.SportID)
	}

	// No summary image on the second entry, so the source default is used.
	if store.headlines[1].ImageURL != "https://cdn/logo.png" {
		t.Errorf("default image = %q", store.headlines[1].ImageURL)
	}
}

func TestCrawlSourceTitleAsBodyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="news-item">
			<h2>Sadece başlık var</h2><a href="/h"></a>
		</div></body></html>`)
	}))
	defer srv.Close()

	store := &fakeStore{}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"

	if _, err := c.CrawlSource(context.Background(), src, NewRunCache()); err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(store.headlines) != 1 {
		t.Fatalf("stored %d headlines", len(store.headlines))
	}
	if store.headlines[0].Content != "Sadece başlık var" {
		t.Errorf("content = %q, want title as body", store.headlines[0].Content)
	}
}

func TestCrawlSourceInsertFailureContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, crawlerListingHTML)
	}))
	defer srv.Close()

	store := &fakeStore{insertErr: errors.New("write conflict")}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"

	res, err := c.CrawlSource(context.Background(), src, NewRunCache())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if res.Processed != 2 || res.Added != 0 || res.Failed != 2 {
		t.Errorf("result = %+v, want both attempted and failed", res)
	}
}

func TestCrawlSourceListingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &fakeStore{}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"

	res, err := c.CrawlSource(context.Background(), src, NewRunCache())
	if err == nil {
		t.Fatal("expected error for failing listing")
	}
	var ee *news.ExtractError
	if !errors.As(err, &ee) {
		t.Errorf("error type = %T", err)
	}
	if res.Failed != 1 || res.Processed != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestCrawlSourceDuplicatesSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, crawlerListingHTML)
	}))
	defer srv.Close()

	store := &fakeStore{}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"
	cache := NewRunCache()

	if _, err := c.CrawlSource(context.Background(), src, cache); err != nil {
		t.Fatalf("first crawl: %v", err)
	}
	res, err := c.CrawlSource(context.Background(), src, cache)
	if err != nil {
		t.Fatalf("second crawl: %v", err)
	}
	// Duplicates still count as processed but are never re-inserted.
	if res.Processed != 2 || res.Added != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(store.headlines) != 2 {
		t.Errorf("stored %d headlines, want 2", len(store.headlines))
	}
}

func TestCrawlSourceRedirectTargetAlreadyStored(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="news-item">
			<h2>Etiket sayfası başlığı</h2><a href="/etiket-konyaspor"></a>
		</div></body></html>`)
	})
	mux.HandleFunc("/etiket-konyaspor", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		<div class="news-list"><a href="/haber/gercek">Gerçek haber</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/haber/gercek", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Gerçek başlık</h1>
		<div class="icerik"><p>Gövde metni burada.</p></div></body></html>`)
	})

	store := &fakeStore{}
	store.headlines = append(store.headlines, &news.Headline{
		Title:     "Başka listeden gelen kayıt",
		SourceURL: srv.URL + "/haber/gercek",
	})

	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	src := testSource()
	src.URL = srv.URL + "/"
	src.FollowDetail = true
	src.Strategy = sources.BodyListingRedirect
	src.Locators.DetailBody = sources.CSSLoc(".icerik")
	src.Locators.ListingLinks = sources.CSSLoc(".news-list a")

	res, err := c.CrawlSource(context.Background(), src, NewRunCache())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	// The redirect landed on an article already stored under another
	// listing link: processed but neither added nor failed.
	if res.Processed != 1 || res.Added != 0 || res.Failed != 0 {
		t.Errorf("result = %+v, want processed=1 added=0 failed=0", res)
	}
	if len(store.headlines) != 1 {
		t.Errorf("stored %d headlines, want the pre-existing one only", len(store.headlines))
	}
}

func TestCrawlSporxCategory(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/futbol/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="news-list-item">
			<a href="/haber/a">A</a>
			<a href="/haber/b">B</a>
			<a href="/haber/a">A tekrar</a>
		</div></body></html>`)
	})
	detail := func(title string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><body><div class="news-detail">
				<h1>`+title+`</h1>
				<div class="news-content">Uzun makale gövdesi burada yer alıyor.</div>
				<div class="news-img"><img src="/img/d.jpg"></div>
				<div class="news-date">10 Haziran 2023, 14:30</div>
			</div></body></html>`)
		}
	}
	mux.HandleFunc("/haber/a", detail("Başlık A"))
	mux.HandleFunc("/haber/b", detail("Başlık B"))

	store := &fakeStore{}
	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	fam := sources.Sporx()
	cat := sources.SporxCategory{
		Name:    "Sporx Test",
		URL:     srv.URL + "/futbol/",
		SportID: sources.SportFootball,
	}

	res, err := c.CrawlSporxCategory(context.Background(), &fam, cat, NewRunCache())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if res.Processed != 2 || res.Added != 2 {
		t.Fatalf("result = %+v, want 2 distinct links", res)
	}

	h := store.headlines[0]
	if h.Title != "Başlık A" {
		t.Errorf("title = %q", h.Title)
	}
	if h.Content != "Uzun makale gövdesi burada yer alıyor." {
		t.Errorf("content = %q", h.Content)
	}
	if h.ImageURL != srv.URL+"/img/d.jpg" {
		t.Errorf("image = %q", h.ImageURL)
	}
	want := time.Date(2023, time.June, 10, 14, 30, 0, 0, time.Local)
	if !h.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", h.PublishedAt, want)
	}
}

func TestCrawlSporxCategorySkipsStoredURL(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/futbol/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="news-list-item"><a href="/haber/a">A</a></div></body></html>`)
	})
	var detailHits int
	mux.HandleFunc("/haber/a", func(w http.ResponseWriter, r *http.Request) {
		detailHits++
		fmt.Fprint(w, `<html><body><h1 class="title">A</h1></body></html>`)
	})

	store := &fakeStore{}
	store.headlines = append(store.headlines, &news.Headline{
		Title:     "Eski kayıt",
		SourceURL: srv.URL + "/haber/a",
	})

	fetch := testFetcher()
	defer fetch.Close()
	c := NewCrawler(fetch, store, testCrawlConfig(), testLogger)

	fam := sources.Sporx()
	cat := sources.SporxCategory{Name: "Sporx Test", URL: srv.URL + "/futbol/", SportID: sources.SportFootball}

	res, err := c.CrawlSporxCategory(context.Background(), &fam, cat, NewRunCache())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if detailHits != 0 {
		t.Errorf("detail fetched %d times, want 0 for stored url", detailHits)
	}
	if res.Processed != 0 || res.Added != 0 {
		t.Errorf("result = %+v", res)
	}
}
