// Package translate provides the optional EN→FR summary translation.
// Translation is best-effort: every failure path returns the original text
// with translated=false, and the pipeline carries on.
package translate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Translator turns English text into French. The boolean reports whether
// the output actually differs from the input.
type Translator interface {
	Translate(ctx context.Context, text string) (string, bool, error)
}

// Noop passes text through unchanged. Used when translation is disabled.
type Noop struct{}

func (Noop) Translate(_ context.Context, text string) (string, bool, error) {
	return text, false, nil
}

// HTTPTranslator calls a self-hosted LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	url    string
	client *http.Client
}

// NewHTTPTranslator creates a translator against a local endpoint such as
// http://localhost:5000/translate.
func NewHTTPTranslator(url string, timeout time.Duration) *HTTPTranslator {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTranslator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate posts the text for EN→FR translation. An empty or identical
// response counts as untranslated.
func (t *HTTPTranslator) Translate(ctx context.Context, text string) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return text, false, nil
	}

	payload, err := json.Marshal(translateRequest{Q: text, Source: "en", Target: "fr", Format: "text"})
	if err != nil {
		return text, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return text, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return text, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return text, false, fmt.Errorf("translate endpoint: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return text, false, err
	}

	var out translateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return text, false, fmt.Errorf("decoding translate response: %w", err)
	}

	translated := strings.TrimSpace(out.TranslatedText)
	if translated == "" || translated == strings.TrimSpace(text) {
		return text, false, nil
	}
	return translated, true, nil
}

// Cache is the storage surface for translated summaries, keyed by text hash.
type Cache interface {
	GetTranslation(hash string) (string, bool, error)
	PutTranslation(hash, sourceText, translatedText string) error
}

// Cached wraps a Translator with a persistent cache so repeated runs do not
// re-translate unchanged summaries.
type Cached struct {
	inner Translator
	cache Cache
}

// NewCached wraps inner with cache.
func NewCached(inner Translator, cache Cache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) Translate(ctx context.Context, text string) (string, bool, error) {
	key := TextHash(text)
	if cached, ok, err := c.cache.GetTranslation(key); err == nil && ok {
		return cached, cached != text, nil
	}

	out, translated, err := c.inner.Translate(ctx, text)
	if err != nil {
		return text, false, err
	}
	if translated {
		// Cache write failures are not worth failing the item over.
		_ = c.cache.PutTranslation(key, text, out)
	}
	return out, translated, nil
}

// TextHash returns the cache key for a piece of source text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
