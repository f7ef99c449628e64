// Package textnorm provides the text normalization primitives used by the
// admission filter and the relevance scorer. All matching elsewhere in the
// pipeline happens on the output of Normalize, so every function here must
// stay deterministic and pure.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	sentenceRe   = regexp.MustCompile(`([.!?])\s+`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// "The post X appeared first on Y" trailers that WordPress feeds append
	// to every summary, in both English and French.
	postFooterRe = regexp.MustCompile(
		`(?i)(?:The post|Le post|L['’]après)[^.]{0,200}(?:appeared first on|est apparue? en premier sur).*$`)
)

// Normalize lowercases, decomposes to NFKD, strips combining marks (so
// "défense" matches "defense"), collapses whitespace and trims. It is
// idempotent and safe on empty input.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	t = norm.NFKD.String(t)
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.IsMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return collapseWhitespace(b.String())
}

// StripHTML replaces every tag span with a single space and collapses
// whitespace. Markup inside feed summaries is noise, not structure, so a
// regex sweep is all that is needed here.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	return collapseWhitespace(tagRe.ReplaceAllString(text, " "))
}

// CleanBoilerplate prepares a raw feed summary for display and analysis:
// entity unescape, tag removal, footer trailer removal.
func CleanBoilerplate(text string) string {
	if text == "" {
		return ""
	}
	t := html.UnescapeString(text)
	t = StripHTML(t)
	t = postFooterRe.ReplaceAllString(t, "")
	return collapseWhitespace(t)
}

// SplitSentences splits on sentence-ending punctuation followed by
// whitespace. Deliberately naive (no abbreviation handling): it only bounds
// the scope of the co-occurrence rule, it does not need to be a parser.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	marked := sentenceRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Truncate bounds text at max runes, cutting back to a word boundary and
// appending an ellipsis. Text at or under the limit is returned unchanged.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	cut := string(runes[:max-1])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

var frenchMarkers = []string{
	" le ", " la ", " les ", " un ", " une ", " des ", " du ", " de ",
	" qui ", " que ", " est ", " sont ", " avec ", " dans ", " pour ",
}

var englishMarkers = []string{
	" the ", " and ", " with ", " from ", " that ", " this ", " which ",
	" what ", " can ", " will ", " would ", " should ", " have ", " has ",
}

// DetectLanguage guesses fr/en by counting function words. Good enough to
// decide whether a summary should go through the EN→FR translator.
func DetectLanguage(text string) string {
	if text == "" {
		return "unknown"
	}
	t := " " + strings.ToLower(text) + " "
	fr, en := 0, 0
	for _, m := range frenchMarkers {
		if strings.Contains(t, m) {
			fr++
		}
	}
	for _, m := range englishMarkers {
		if strings.Contains(t, m) {
			en++
		}
	}
	switch {
	case fr > en:
		return "fr"
	case en > fr:
		return "en"
	default:
		return "unknown"
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
