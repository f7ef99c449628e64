// Package fetch enriches feed items whose summaries are empty or too thin to
// classify, by pulling the article page and extracting its text.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/navwatch/navwatch/internal/collect"
)

// minSummaryChars is the length below which a feed summary is considered too
// thin for keyword matching.
const minSummaryChars = 80

// Result holds the counters of an enrichment pass.
type Result struct {
	Enriched int
	Skipped  int
	Failed   int
}

// Enricher fetches article pages over HTTP and extracts readable text.
type Enricher struct {
	client    *http.Client
	userAgent string
}

// NewEnricher creates an Enricher with the given timeout.
func NewEnricher(timeout time.Duration, userAgent string) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = "NavWatch/1.0 (news aggregator)"
	}
	return &Enricher{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// EnrichAll fills in summaries for items that need one. After the first HTTP
// error from a domain, the rest of that domain is skipped for the pass.
func (e *Enricher) EnrichAll(items []collect.RawItem) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})

	for i := range items {
		if len(strings.TrimSpace(items[i].Summary)) >= minSummaryChars {
			result.Skipped++
			continue
		}

		domain := linkDomain(items[i].Link)
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		text, httpErr := e.extract(items[i].Link)
		if httpErr != nil {
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s — skipping remaining from %s", items[i].Link, domain)
			continue
		}

		if text != "" {
			items[i].Summary = text
			result.Enriched++
		} else {
			result.Failed++
		}
	}

	log.Printf("Enrichment complete: %d enriched, %d skipped, %d failed", result.Enriched, result.Skipped, result.Failed)
	return result
}

// extract pulls the page and returns readable text, falling back to the meta
// description when readability finds nothing usable.
func (e *Enricher) extract(link string) (string, error) {
	req, err := http.NewRequest("GET", link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}
	body := string(bodyBytes)

	parsedURL, _ := url.Parse(link)
	if article, err := readability.FromReader(strings.NewReader(body), parsedURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); len(text) > 100 {
			return text, nil
		}
	}

	return metaDescription(body), nil
}

// metaDescription extracts <meta name="description"> or the og:description
// tag from raw HTML.
func metaDescription(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if d := strings.TrimSpace(desc); d != "" {
			return d
		}
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}

func linkDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u == nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
