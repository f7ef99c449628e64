package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/navwatch/navwatch/internal/article"
	"github.com/navwatch/navwatch/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedRun(t *testing.T, db *database.DB) int64 {
	t.Helper()
	runID, err := db.BeginRun()
	if err != nil {
		t.Fatal(err)
	}
	arts := []article.Article{{
		Title:        "Navy machine learning sonar trial",
		Link:         "https://example.test/sonar",
		Summary:      "Essai de sonar dopé au machine learning.",
		Source:       "Naval Technology",
		Published:    time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Relevance:    0.88,
		KeywordScore: 17,
		Priority:     "HIGH",
		Theme:        "OPERATIONAL",
		Hash:         article.HashID("Navy machine learning sonar trial", "https://example.test/sonar"),
	}}
	if err := db.InsertArticles(runID, arts); err != nil {
		t.Fatal(err)
	}
	if err := db.FinishRun(runID, 7, 0, 120, 1, "## HIGH\n\n- item"); err != nil {
		t.Fatal(err)
	}
	return runID
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	seedRun(t, db)

	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Runs de veille") {
		t.Error("expected run list heading in response body")
	}
	if !strings.Contains(body, "/run/1") {
		t.Error("expected link to the seeded run")
	}
}

func TestIndexEmpty(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "navwatch run") {
		t.Error("expected empty-state hint")
	}
}

func TestRunRoute(t *testing.T) {
	db := openTestDB(t)
	runID := seedRun(t, db)

	srv, err := New(db)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", fmt.Sprintf("/run/%d", runID), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Navy machine learning sonar trial") {
		t.Error("expected article title in response")
	}
	// Digest markdown rendered to HTML.
	if !strings.Contains(body, "<h2") {
		t.Error("expected rendered markdown heading")
	}
	if !strings.Contains(body, "level-HIGH") {
		t.Error("expected priority badge")
	}
}

func TestRunLatestRoute(t *testing.T) {
	db := openTestDB(t)
	seedRun(t, db)
	second := seedRun(t, db)

	srv, err := New(db)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/run/latest", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), fmt.Sprintf("Run #%d", second)) {
		t.Error("expected the most recent run")
	}
}

func TestRunNotFound(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/run/99", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStaticRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-sans") {
		t.Error("expected CSS content")
	}
}
