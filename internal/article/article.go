// Package article defines the output record of a watch run, its identity
// hash, deduplication, and the final report ordering.
package article

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/navwatch/navwatch/internal/textnorm"
)

// Article is one admitted, scored feed item. Never mutated after scoring.
type Article struct {
	Title        string
	Link         string
	Summary      string
	Source       string
	Published    time.Time
	Language     string
	Translated   bool
	Relevance    float64
	KeywordScore int
	Priority     string
	Theme        string
	Tags         []string
	Hash         string
}

// HashID derives the identity hash from (title, link). Two items with the
// same title and link are the same entity no matter what else differs.
func HashID(title, link string) string {
	sum := sha256.Sum256([]byte(title + "|" + link))
	return hex.EncodeToString(sum[:])
}

// Deduper is a stable, first-wins duplicate filter. Exact identity is the
// (title, link) hash; the optional fuzzy mode also drops near-duplicate
// titles by token overlap.
type Deduper struct {
	fuzzy      bool
	threshold  float64
	seen       map[string]struct{}
	keptTokens []map[string]struct{}
}

// NewDeduper creates a Deduper. threshold only applies when fuzzy is on;
// values at or above it count as duplicates (0.85 is a sane default).
func NewDeduper(fuzzy bool, threshold float64) *Deduper {
	return &Deduper{
		fuzzy:     fuzzy,
		threshold: threshold,
		seen:      make(map[string]struct{}),
	}
}

// Keep reports whether a is the first of its identity and records it.
// Callers must feed articles in a fixed order so repeated runs over the same
// input keep the same survivors.
func (d *Deduper) Keep(a Article) bool {
	hash := a.Hash
	if hash == "" {
		hash = HashID(a.Title, a.Link)
	}
	if _, dup := d.seen[hash]; dup {
		return false
	}

	var tokens map[string]struct{}
	if d.fuzzy {
		tokens = titleTokens(a.Title)
		for _, kept := range d.keptTokens {
			if jaccard(tokens, kept) >= d.threshold {
				return false
			}
		}
	}

	d.seen[hash] = struct{}{}
	if d.fuzzy {
		d.keptTokens = append(d.keptTokens, tokens)
	}
	return true
}

// Dedupe filters articles keeping the first of each identity, preserving
// input order.
func Dedupe(articles []Article, fuzzy bool, threshold float64) []Article {
	d := NewDeduper(fuzzy, threshold)
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if d.Keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// SortForReport orders articles by relevance desc, publish date desc,
// keyword score desc. The sort is stable so full ties keep fetch order.
func SortForReport(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Relevance != articles[j].Relevance {
			return articles[i].Relevance > articles[j].Relevance
		}
		if !articles[i].Published.Equal(articles[j].Published) {
			return articles[i].Published.After(articles[j].Published)
		}
		return articles[i].KeywordScore > articles[j].KeywordScore
	})
}

func titleTokens(title string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, w := range strings.Fields(textnorm.Normalize(title)) {
		if len(w) > 2 {
			tokens[w] = struct{}{}
		}
	}
	return tokens
}

// jaccard computes |a∩b| / |a∪b| over title token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
