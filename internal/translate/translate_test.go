package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNoopPassthrough(t *testing.T) {
	out, translated, err := Noop{}.Translate(context.Background(), "hello navy")
	if err != nil || translated || out != "hello navy" {
		t.Errorf("got %q %v %v", out, translated, err)
	}
}

func TestHTTPTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Source != "en" || req.Target != "fr" {
			t.Errorf("unexpected language pair: %s -> %s", req.Source, req.Target)
		}
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "bonjour marine"})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, 5*time.Second)
	out, translated, err := tr.Translate(context.Background(), "hello navy")
	if err != nil {
		t.Fatal(err)
	}
	if !translated || out != "bonjour marine" {
		t.Errorf("got %q %v", out, translated)
	}
}

func TestHTTPTranslatorIdenticalOutputNotTranslated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "same text"})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, 5*time.Second)
	out, translated, _ := tr.Translate(context.Background(), "same text")
	if translated || out != "same text" {
		t.Errorf("identical output must count as untranslated: %q %v", out, translated)
	}
}

func TestHTTPTranslatorErrorFallsBackToOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, 5*time.Second)
	out, translated, err := tr.Translate(context.Background(), "hello navy")
	if err == nil {
		t.Error("expected error from 503")
	}
	if translated || out != "hello navy" {
		t.Errorf("error path must return original text: %q %v", out, translated)
	}
}

func TestHTTPTranslatorEmptyInput(t *testing.T) {
	tr := NewHTTPTranslator("http://localhost:1/translate", time.Second)
	out, translated, err := tr.Translate(context.Background(), "   ")
	if err != nil || translated || out != "   " {
		t.Errorf("blank input should short-circuit: %q %v %v", out, translated, err)
	}
}

// memCache is an in-memory translate.Cache for tests.
type memCache struct {
	entries map[string]string
	puts    int
}

func (m *memCache) GetTranslation(hash string) (string, bool, error) {
	v, ok := m.entries[hash]
	return v, ok, nil
}

func (m *memCache) PutTranslation(hash, _, translated string) error {
	m.entries[hash] = translated
	m.puts++
	return nil
}

// countingTranslator wraps Noop-ish behavior with call counting.
type countingTranslator struct {
	calls int
	out   string
}

func (c *countingTranslator) Translate(_ context.Context, text string) (string, bool, error) {
	c.calls++
	if c.out == "" {
		return text, false, nil
	}
	return c.out, true, nil
}

func TestCachedTranslatorHitsCacheOnSecondCall(t *testing.T) {
	cache := &memCache{entries: map[string]string{}}
	inner := &countingTranslator{out: "résumé traduit"}
	tr := NewCached(inner, cache)

	out1, translated1, err := tr.Translate(context.Background(), "english summary")
	if err != nil || !translated1 || out1 != "résumé traduit" {
		t.Fatalf("first call: %q %v %v", out1, translated1, err)
	}

	out2, translated2, err := tr.Translate(context.Background(), "english summary")
	if err != nil || !translated2 || out2 != "résumé traduit" {
		t.Fatalf("second call: %q %v %v", out2, translated2, err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
	if cache.puts != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.puts)
	}
}

type failingTranslator struct{}

func (failingTranslator) Translate(_ context.Context, _ string) (string, bool, error) {
	return "", false, errors.New("unreachable")
}

func TestCachedTranslatorErrorReturnsOriginal(t *testing.T) {
	cache := &memCache{entries: map[string]string{}}
	tr := NewCached(failingTranslator{}, cache)

	out, translated, err := tr.Translate(context.Background(), "english summary")
	if err == nil {
		t.Error("expected error to propagate")
	}
	if translated || out != "english summary" {
		t.Errorf("expected original text back, got %q %v", out, translated)
	}
}
