// Package taxonomy holds the static keyword tables driving admission and
// scoring. Terms are stored pre-normalized (lowercase, accent-free) because
// every matcher in this package runs against textnorm.Normalize output.
//
// Term presence is substring containment, not token matching. That is a
// deliberate trade-off: short terms ("ai", "ew", "c2") can false-positive,
// which is why the explicit AI/Defense pattern lists below carry word
// boundaries while the weighted term sets do not.
package taxonomy

import (
	"regexp"
	"sort"
	"strings"
)

// Category is a named set of weighted terms.
type Category struct {
	Name   string
	Weight int
	Terms  []string
}

var categories = []Category{
	{
		Name:   "ai_core",
		Weight: 5,
		Terms: []string{
			"intelligence artificielle", "ia", "ai", "artificial intelligence",
		},
	},
	{
		Name:   "ml_techniques",
		Weight: 4,
		Terms: []string{
			"machine learning", "deep learning", "neural network",
			"apprentissage automatique", "reseau neuronal",
			"transformer", "inference",
		},
	},
	{
		Name:   "ai_applications",
		Weight: 3,
		Terms: []string{
			"computer vision", "vision par ordinateur",
			"nlp", "natural language processing", "traitement du langage",
			"speech recognition", "reconnaissance vocale",
		},
	},
	{
		Name:   "generative_ai",
		Weight: 4,
		Terms: []string{
			"llm", "large language model", "gpt", "generative ai", "generatif",
			"diffusion model", "gan",
		},
	},
	{
		Name:   "naval_platforms",
		Weight: 5,
		Terms: []string{
			"marine", "naval", "navy", "fregate", "destroyer",
			"sous-marin", "submarine", "corvette", "porte-avions",
			"aircraft carrier", "maritime",
		},
	},
	{
		Name:   "defense_systems",
		Weight: 4,
		Terms: []string{
			"radar", "sonar", "lidar", "ew", "electronic warfare",
			"guerre electronique", "missile", "torpedo",
			"countermeasure", "contre-mesure",
		},
	},
	{
		Name:   "c4isr",
		Weight: 5,
		Terms: []string{
			"c4isr", "c2", "command", "control", "isr",
			"intelligence surveillance reconnaissance",
			"situational awareness", "sensor fusion", "reconnaissance",
		},
	},
	{
		Name:   "cyber_defense",
		Weight: 4,
		Terms: []string{
			"cyber", "cybersecurite", "cybersecurity", "cyber defense",
			"cyberdefense", "ransomware", "malware", "intrusion", "apt",
			"zero day", "soc", "threat intelligence",
		},
	},
	{
		Name:   "autonomous_systems",
		Weight: 4,
		Terms: []string{
			"drone", "uav", "uas", "usv", "uuv", "unmanned",
			"autonomous", "autonome", "swarm", "essaim",
		},
	},
}

// Categories returns the full weighted term table.
func Categories() []Category {
	return categories
}

// aiPatterns and defensePatterns are the strict, word-boundary-anchored
// detectors used by the admission filter and the co-occurrence bonus.
var aiPatterns = compileAll([]string{
	`\b(ai|ia)\b`,
	`\b(machine learning|apprentissage automatique)\b`,
	`\b(deep learning|reseau(?:x)? neuronal(?:aux)?|neural network(?:s)?)\b`,
	`\b(llm|large language model(?:s)?)\b`,
	`\b(generatif|generative ai|diffusion model|gan)\b`,
	`\b(computer vision|vision par ordinateur)\b`,
	`\b(nlp|traitement du langage|natural language processing)\b`,
	`\binference\b`,
})

var defensePatterns = compileAll([]string{
	`\b(naval|marine|navy|fregate|destroyer|sous-?marin|submarine|corvette|porte-?avions|aircraft carrier|maritime)\b`,
	`\b(c4isr|c2|isr|command|control|surveillance|reconnaissance|situational awareness|sensor fusion)\b`,
	`\b(radar|sonar|lidar|ew|electronic warfare|guerre electronique|missile|torpedo|counter-?measure)\b`,
	`\b(cyber|cybersecurite|cybersecurity|ransomware|malware|intrusion|apt|zero[- ]?day|soc|threat intelligence)\b`,
	`\b(drone|uav|uas|usv|uuv|unmanned|autonom(?:e|ous)|swarm|essaim)\b`,
})

// noisePatterns reject consumer/entertainment items. Rejection only; they
// never contribute to scoring.
var noisePatterns = compileAll([]string{
	`\b(deal|promo|bon\s?plan|reduction|discount|sale)\b`,
	`\b(gaming|jeu(x)?\s?video|streaming|people|cinema|entertainment)\b`,
	`\b(smartphone|tablet|gadget|consumer|grand public)\b`,
	`\b(rumeur|rumor|leak|spoiler|speculation)\b`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// HasAI reports whether normalized text contains an AI pattern.
func HasAI(normText string) bool {
	return matchAny(aiPatterns, normText)
}

// HasDefense reports whether normalized text contains a Defense pattern.
func HasDefense(normText string) bool {
	return matchAny(defensePatterns, normText)
}

// IsNoise reports whether normalized text matches a noise pattern.
func IsNoise(normText string) bool {
	return matchAny(noisePatterns, normText)
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// HasDefenseContext reports whether normalized text contains a strong
// defense-context term. This is the whitelist that lets procurement or
// exercise coverage survive the noise patterns ("deal" in a defense contract
// story is not a shopping deal). Only the naval, defense-systems and C4ISR
// sets count; cyber or autonomy vocabulary alone does not override noise.
func HasDefenseContext(normText string) bool {
	for _, c := range categories {
		switch c.Name {
		case "naval_platforms", "defense_systems", "c4isr":
			for _, term := range c.Terms {
				if strings.Contains(normText, term) {
					return true
				}
			}
		}
	}
	return false
}

// KeywordScore sums the category weight of every term present in the
// normalized text. Unbounded; feeds the priority label, never admission.
func KeywordScore(normText string) int {
	score := 0
	for _, c := range categories {
		for _, term := range c.Terms {
			if strings.Contains(normText, term) {
				score += c.Weight
			}
		}
	}
	return score
}

// SemanticDensity accumulates 0.1 × weight per present term. This is the
// `sem` input of the relevance score.
func SemanticDensity(normText string) float64 {
	sem := 0.0
	for _, c := range categories {
		for _, term := range c.Terms {
			if strings.Contains(normText, term) {
				sem += 0.1 * float64(c.Weight)
			}
		}
	}
	return sem
}

var tagRules = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"LLM/Génératif", regexp.MustCompile(`\b(llm|large language model|generatif|generative ai|diffusion model|gan)\b`)},
	{"Vision Artificielle", regexp.MustCompile(`\b(computer vision|vision par ordinateur)\b`)},
	{"NLP", regexp.MustCompile(`\b(nlp|traitement du langage|natural language processing)\b`)},
	{"Naval", regexp.MustCompile(`\b(naval|marine|navy|sous-?marin|submarine|destroyer|fregate|maritime)\b`)},
	{"C4ISR", regexp.MustCompile(`\b(c4isr|c2|isr|command|control|surveillance|reconnaissance)\b`)},
	{"Cybersécurité", regexp.MustCompile(`\b(cyber|cybersecurite|cybersecurity|ransomware|malware|intrusion)\b`)},
	{"Systèmes Autonomes", regexp.MustCompile(`\b(drone|uav|uas|usv|uuv|unmanned|autonom(?:e|ous)|swarm|essaim)\b`)},
	{"R&D", regexp.MustCompile(`\b(prototype|research|laboratoire|laboratory|paper)\b`)},
	{"Opérationnel", regexp.MustCompile(`\b(deployment|deployed|fielded|operational|operationnel|exercise|exercice)\b`)},
}

// Tags returns the sorted set of display tags matching the normalized text.
func Tags(normText string) []string {
	set := map[string]struct{}{}
	for _, r := range tagRules {
		if r.re.MatchString(normText) {
			set[r.tag] = struct{}{}
		}
	}
	if len(set) == 0 {
		return []string{"—"}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

var themeRules = []struct {
	theme string
	re    *regexp.Regexp
}{
	{"POLICY", regexp.MustCompile(`\b(policy|reglementation|regulation|budget|appropriation|spending|bill|award|contract|option year|procurement|acquisition)\b`)},
	{"DEVELOPMENT", regexp.MustCompile(`\b(prototype|trial|essai|r&d|laboratoire|lab|research|paper)\b`)},
	{"OPERATIONAL", regexp.MustCompile(`\b(deployment|deployed|fielded|operationnel|operational|exercise|exercice)\b`)},
	{"THREAT", regexp.MustCompile(`\b(threat|menace|intrusion|ransomware|ew|electronic warfare|counter-?uas)\b`)},
	{"PARTNERSHIP", regexp.MustCompile(`\b(partnership|alliance|accord|cooperation|framework|mou|moa)\b`)},
}

// ClassifyTheme maps normalized text to a coarse editorial theme. First
// matching rule wins; TECHNOLOGY is the default.
func ClassifyTheme(normText string) string {
	for _, r := range themeRules {
		if r.re.MatchString(normText) {
			return r.theme
		}
	}
	return "TECHNOLOGY"
}
