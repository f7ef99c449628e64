package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalizeStripsAccents(t *testing.T) {
	got := Normalize("Défense  Européenne")
	if got != "defense europeenne" {
		t.Errorf("expected %q, got %q", "defense europeenne", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Frégate   FDI\tAmiral Ronarc'h",
		"AI-powered SONAR détection",
		"",
		"   ",
		"already normalized text",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if Normalize("") != "" {
		t.Error("expected empty string")
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<p>Radar <b>naval</b></p><br/>update")
	if got != "Radar naval update" {
		t.Errorf("got %q", got)
	}
}

func TestCleanBoilerplateRemovesFooter(t *testing.T) {
	in := "La marine teste un sonar IA. The post Navy tests AI sonar appeared first on Naval News."
	got := CleanBoilerplate(in)
	if got != "La marine teste un sonar IA." {
		t.Errorf("got %q", got)
	}
}

func TestCleanBoilerplateUnescapesEntities(t *testing.T) {
	got := CleanBoilerplate("Command &amp; control &lt;systems&gt;")
	if got != "Command & control <systems>" {
		t.Errorf("got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First sentence. Second one! Third? ")
	want := []string{"First sentence.", "Second one!", "Third?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := Truncate("a long summary that keeps going and going", 20)
	if len([]rune(got)) > 20 {
		t.Errorf("truncated text too long: %q", got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Errorf("expected ellipsis, got %q", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"La marine nationale teste un système pour les frégates dans la rade", "fr"},
		{"The navy will test the system that can improve sonar detection", "en"},
		{"", "unknown"},
	}
	for _, c := range cases {
		if got := DetectLanguage(c.text); got != c.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
