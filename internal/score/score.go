// Package score computes the bounded relevance score and the coarse
// priority label for admitted articles.
package score

import (
	"math"
	"time"

	"github.com/navwatch/navwatch/internal/taxonomy"
)

// Bounds of the relevance score.
const (
	MinRelevance = 0.0
	MaxRelevance = 1.5
)

// Priority labels derived from the keyword score.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Thresholds holds the keyword-score cutoffs for the priority label.
type Thresholds struct {
	High   int
	Medium int
}

// DefaultThresholds match the tuned values for the 1-6 weight scale.
var DefaultThresholds = Thresholds{High: 15, Medium: 8}

// Scorer computes relevance from normalized text, source authority and age.
// The divisor keeps scores in a probability-like band for the 1-6 taxonomy
// weight range; changing the weight scale means retuning it.
type Scorer struct {
	now        func() time.Time
	thresholds Thresholds
}

// New creates a Scorer with the given priority thresholds.
func New(thresholds Thresholds) *Scorer {
	if thresholds.High == 0 && thresholds.Medium == 0 {
		thresholds = DefaultThresholds
	}
	return &Scorer{now: time.Now, thresholds: thresholds}
}

// WithClock overrides the time source. Tests only.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Freshness returns the decay multiplier for an article of the given age:
// 2^(-ageHours/72), floored at 0.5 so old-but-relevant items keep half
// weight. The day-window filter removes truly stale items before scoring,
// so the floor never lets ancient items flood the report.
func Freshness(age time.Duration) float64 {
	hours := age.Hours()
	if hours < 0 {
		hours = 0
	}
	f := math.Exp2(-hours / 72.0)
	if f < 0.5 {
		return 0.5
	}
	return f
}

// Relevance computes the clamped relevance score for normalized title+summary
// text published at the given time, from a source with the given authority.
func (s *Scorer) Relevance(normText string, published time.Time, authority float64) float64 {
	sem := taxonomy.SemanticDensity(normText)
	freshness := Freshness(s.now().Sub(published))

	coBonus := 1.0
	if taxonomy.HasAI(normText) && taxonomy.HasDefense(normText) {
		coBonus = 1.3
	}

	score := (sem * authority * freshness * coBonus) / 10.0
	return clamp(score, MinRelevance, MaxRelevance)
}

// KeywordScore sums category weights for every term present. Unbounded;
// only feeds the priority label.
func (s *Scorer) KeywordScore(normText string) int {
	return taxonomy.KeywordScore(normText)
}

// Priority maps a keyword score to its label.
func (s *Scorer) Priority(keywordScore int) string {
	switch {
	case keywordScore >= s.thresholds.High:
		return PriorityHigh
	case keywordScore >= s.thresholds.Medium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
