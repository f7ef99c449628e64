// Package triage decides whether a feed item enters the scoring pipeline.
// The rules are deterministic keyword tests on normalized text: noise
// exclusion (with a defense-context override), a mandatory AI term, and
// AI/Defense co-occurrence within the configured scope.
package triage

import (
	"fmt"

	"github.com/navwatch/navwatch/internal/taxonomy"
	"github.com/navwatch/navwatch/internal/textnorm"
)

// Policy selects the co-occurrence scope.
type Policy string

const (
	// PolicySentence requires an AI term and a Defense term inside the
	// title alone or inside one sentence of the summary. The stricter,
	// lower-false-positive default.
	PolicySentence Policy = "sentence"
	// PolicyText accepts co-occurrence anywhere in the full text.
	PolicyText Policy = "text"
)

// ParsePolicy validates a policy string from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySentence, PolicyText:
		return Policy(s), nil
	case "":
		return PolicySentence, nil
	}
	return "", fmt.Errorf("unknown cooccurrence policy %q (want sentence or text)", s)
}

// Rejection reasons, used for run counters and verbose logging.
const (
	ReasonNoise        = "noise"
	ReasonNoAI         = "no_ai_term"
	ReasonNoCooccur    = "no_cooccurrence"
	ReasonMissingField = "missing_field"
)

// Verdict is the outcome of an admission check.
type Verdict struct {
	Admit  bool
	Reason string // empty when admitted
}

// Filter applies the admission rules under one fixed policy. A single
// Filter instance is built at startup and used for the whole run; the
// policy never changes mid-pipeline.
type Filter struct {
	policy Policy
}

// New creates an admission filter with the given co-occurrence policy.
func New(policy Policy) *Filter {
	return &Filter{policy: policy}
}

// Policy returns the configured co-occurrence policy.
func (f *Filter) Policy() Policy {
	return f.policy
}

// Admit runs the three admission rules on an item's title and cleaned
// summary. Both inputs are raw display text; normalization happens here.
func (f *Filter) Admit(title, summary string) Verdict {
	if title == "" {
		return Verdict{Reason: ReasonMissingField}
	}

	normTitle := textnorm.Normalize(title)
	normAll := textnorm.Normalize(title + " " + summary)

	// Rule 1: noise exclusion, unless strong defense context overrides.
	if taxonomy.IsNoise(normAll) && !taxonomy.HasDefenseContext(normAll) {
		return Verdict{Reason: ReasonNoise}
	}

	// Rule 2: an AI term is mandatory.
	if !taxonomy.HasAI(normAll) {
		return Verdict{Reason: ReasonNoAI}
	}

	// Rule 3: AI and Defense must co-occur within the policy scope.
	switch f.policy {
	case PolicyText:
		if taxonomy.HasDefense(normAll) {
			return Verdict{Admit: true}
		}
	default: // PolicySentence
		scopes := append([]string{normTitle}, textnorm.SplitSentences(textnorm.Normalize(summary))...)
		for _, scope := range scopes {
			if taxonomy.HasAI(scope) && taxonomy.HasDefense(scope) {
				return Verdict{Admit: true}
			}
		}
	}
	return Verdict{Reason: ReasonNoCooccur}
}
