// Package collect fetches configured RSS/Atom feeds and adapts their
// entries into typed RawItems. Everything past this boundary works with
// explicit fields; missing-key ambiguity from feed payloads stops here.
package collect

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Source is one configured feed: static data, immutable at runtime.
type Source struct {
	Name      string
	URL       string
	Language  string // declared feed language (fr|en)
	Authority float64
	Category  string // tech|business|defense|naval|cyber
}

// RawItem is a feed entry after adaptation. Items without title or link
// never become RawItems.
type RawItem struct {
	Title     string
	Link      string
	Summary   string // raw, possibly HTML-laden
	Published time.Time
	HasDate   bool // false when no timestamp could be parsed
	Source    Source
}

// Stats summarizes a collection pass.
type Stats struct {
	SourcesOK     int
	SourcesFailed int
	ItemsSeen     int
	PerSource     map[string]int
}

// Fetcher downloads and parses feeds with bounded retry.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	maxPerFeed int
	sleep      func(time.Duration)
}

// NewFetcher creates a Fetcher. maxRetries bounds attempts per source;
// maxPerFeed caps entries taken from a single feed.
func NewFetcher(timeout time.Duration, userAgent string, maxRetries, maxPerFeed int) *Fetcher {
	if timeout == 0 {
		timeout = 25 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if maxPerFeed <= 0 {
		maxPerFeed = 50
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxRetries: maxRetries,
		maxPerFeed: maxPerFeed,
		sleep:      time.Sleep,
	}
}

// FetchAll collects every source sequentially. A failing source contributes
// zero items and the pass continues.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]RawItem, Stats) {
	stats := Stats{PerSource: make(map[string]int)}
	var all []RawItem

	for _, src := range sources {
		items, err := f.FetchSource(ctx, src)
		if err != nil {
			log.Printf("source %s failed: %v", src.Name, err)
			stats.SourcesFailed++
			continue
		}
		stats.SourcesOK++
		stats.ItemsSeen += len(items)
		stats.PerSource[src.Name] = len(items)
		all = append(all, items...)
		log.Printf("source %s: %d entries", src.Name, len(items))
	}

	return all, stats
}

// FetchSource downloads one feed with exponential-backoff retry and adapts
// its entries.
func (f *Fetcher) FetchSource(ctx context.Context, src Source) ([]RawItem, error) {
	var body string
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-after(f.sleep, delay):
			}
		}
		b, err := f.get(ctx, src.URL)
		if err != nil {
			lastErr = err
			log.Printf("[%d/%d] fetch error %s: %v", attempt+1, f.maxRetries, src.URL, err)
			continue
		}
		body = b
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("fetching %s after %d attempts: %w", src.URL, f.maxRetries, lastErr)
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		// Malformed beyond salvage: the source yields nothing this run.
		log.Printf("malformed feed %s: %v", src.URL, err)
		return nil, nil
	}

	var items []RawItem
	for _, entry := range feed.Items {
		if len(items) >= f.maxPerFeed {
			break
		}
		if item, ok := adaptItem(entry, src); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// after adapts an injectable sleep into a select-able channel so retry
// waits still honor context cancellation in tests.
func after(sleep func(time.Duration), d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		sleep(d)
		close(ch)
	}()
	return ch
}
