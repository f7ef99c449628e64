package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>AI radar trial</title>
    <link>https://example.test/ai-radar</link>
    <description>Machine learning radar trial aboard a frigate.</description>
    <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://example.test/no-title</link>
    <description>Item without a title must be dropped.</description>
  </item>
  <item>
    <title>Undated item</title>
    <link>https://example.test/undated</link>
    <description>No pubDate at all.</description>
  </item>
</channel>
</rss>`

func noSleep(f *Fetcher) *Fetcher {
	f.sleep = func(time.Duration) {}
	return f
}

func testSource(url string) Source {
	return Source{Name: "Test", URL: url, Language: "en", Authority: 1.0, Category: "defense"}
}

func TestFetchSourceAdaptsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	f := noSleep(NewFetcher(5*time.Second, "navwatch-test", 3, 50))
	items, err := f.FetchSource(context.Background(), testSource(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (title-less one dropped), got %d", len(items))
	}

	first := items[0]
	if first.Title != "AI radar trial" || first.Link != "https://example.test/ai-radar" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if !first.HasDate {
		t.Error("expected parsed pubDate")
	}
	if first.Published.UTC().Hour() != 10 {
		t.Errorf("unexpected published time: %v", first.Published)
	}
	if first.Source.Name != "Test" {
		t.Errorf("source not attached: %+v", first.Source)
	}

	if items[1].HasDate {
		t.Error("undated item must report HasDate=false")
	}
}

func TestFetchSourceRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	f := noSleep(NewFetcher(5*time.Second, "", 3, 50))
	items, err := f.FetchSource(context.Background(), testSource(srv.URL))
	if err != nil {
		t.Fatalf("expected third attempt to succeed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(items) == 0 {
		t.Error("expected items after retry")
	}
}

func TestFetchSourceExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := noSleep(NewFetcher(5*time.Second, "", 3, 50))
	if _, err := f.FetchSource(context.Background(), testSource(srv.URL)); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	f := noSleep(NewFetcher(5*time.Second, "", 2, 50))
	items, stats := f.FetchAll(context.Background(), []Source{
		{Name: "Bad", URL: bad.URL},
		{Name: "Good", URL: good.URL},
	})

	if stats.SourcesFailed != 1 || stats.SourcesOK != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(items) != 2 {
		t.Errorf("expected items from the good source, got %d", len(items))
	}
}

func TestMaxPerFeedCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>big</title>`)
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, `<item><title>Item %d</title><link>https://e.test/%d</link></item>`, i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
	defer srv.Close()

	f := noSleep(NewFetcher(5*time.Second, "", 1, 4))
	items, err := f.FetchSource(context.Background(), testSource(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Errorf("expected cap of 4, got %d", len(items))
	}
}

func TestParseDateFallbackChain(t *testing.T) {
	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Parsed field wins.
	if got, ok := parseDate(&gofeed.Item{PublishedParsed: &ts}); !ok || !got.Equal(ts) {
		t.Errorf("expected published_parsed, got %v %v", got, ok)
	}

	// Updated parsed next.
	if got, ok := parseDate(&gofeed.Item{UpdatedParsed: &ts}); !ok || !got.Equal(ts) {
		t.Errorf("expected updated_parsed, got %v %v", got, ok)
	}

	// Raw string fallback.
	if got, ok := parseDate(&gofeed.Item{Published: "2026-03-02 10:00:00 +0000"}); !ok || got.Hour() != 10 {
		t.Errorf("expected raw-string parse, got %v %v", got, ok)
	}

	// Nothing parseable.
	if _, ok := parseDate(&gofeed.Item{Published: "not a date"}); ok {
		t.Error("expected ok=false for unparseable date")
	}
	if _, ok := parseDate(&gofeed.Item{}); ok {
		t.Error("expected ok=false for missing date")
	}
}
