// Package pipeline orchestrates a full watch run: collect, enrich, analyze,
// dedupe, store, render.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/navwatch/navwatch/internal/article"
	"github.com/navwatch/navwatch/internal/collect"
	"github.com/navwatch/navwatch/internal/config"
	"github.com/navwatch/navwatch/internal/database"
	"github.com/navwatch/navwatch/internal/fetch"
	"github.com/navwatch/navwatch/internal/report"
	"github.com/navwatch/navwatch/internal/score"
	"github.com/navwatch/navwatch/internal/taxonomy"
	"github.com/navwatch/navwatch/internal/textnorm"
	"github.com/navwatch/navwatch/internal/translate"
	"github.com/navwatch/navwatch/internal/triage"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunID    int64
	Kept     []article.Article
	Rejected map[string]int // rejection reason -> count
	Steps    []StepResult
}

// Options are the per-invocation overrides from the command line.
type Options struct {
	DaysWindow   int     // 0 keeps the configured window
	RelevanceMin float64 // <0 keeps the configured threshold
	NoTranslate  bool
	OutDir       string // overrides output.report_dir
}

// Pipeline runs the 6-step watch pipeline.
type Pipeline struct {
	cfg        *config.Config
	db         *database.DB
	translator translate.Translator
	now        func() time.Time
}

// New creates a pipeline. The translator is chosen from config: disabled or
// --no-translate means a passthrough.
func New(cfg *config.Config, db *database.DB, opts Options) *Pipeline {
	var tr translate.Translator = translate.Noop{}
	if cfg.Translation.Enabled && !opts.NoTranslate {
		tr = translate.NewCached(
			translate.NewHTTPTranslator(cfg.Translation.URL, time.Duration(cfg.Translation.TimeoutSeconds)*time.Second),
			db,
		)
	}
	return &Pipeline{cfg: cfg, db: db, translator: tr, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes the full pipeline and persists the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) *Result {
	r := &Result{Rejected: make(map[string]int)}

	days := p.cfg.Pipeline.DaysWindow
	if opts.DaysWindow > 0 {
		days = opts.DaysWindow
	}
	relevanceMin := p.cfg.Pipeline.RelevanceMin
	if opts.RelevanceMin >= 0 {
		relevanceMin = opts.RelevanceMin
	}

	runID, err := p.db.BeginRun()
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Collect", Err: err})
		return r
	}
	r.RunID = runID

	// Step 1: Collect
	log.Println("Step 1/6: Collecting feeds...")
	items, stats := p.collect(ctx)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("%d entries from %d sources (%d failed)", stats.ItemsSeen, stats.SourcesOK, stats.SourcesFailed),
	})

	// Step 2: Enrich thin summaries
	if p.cfg.Fetch.EnrichContent {
		log.Println("Step 2/6: Enriching thin summaries...")
		enricher := fetch.NewEnricher(time.Duration(p.cfg.Fetch.TimeoutSeconds)*time.Second, p.cfg.Fetch.UserAgent)
		res := enricher.EnrichAll(items)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Enrich",
			Summary: fmt.Sprintf("%d enriched, %d failed", res.Enriched, res.Failed),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{Name: "Enrich", Summary: "disabled"})
	}

	// Step 3: Analyze — filter, translate, score
	log.Println("Step 3/6: Analyzing entries...")
	kept := p.analyze(ctx, items, days, relevanceMin, r.Rejected)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("%d admitted of %d", len(kept), len(items)),
	})

	// Step 4: Dedupe
	log.Println("Step 4/6: Deduplicating...")
	before := len(kept)
	kept = article.Dedupe(kept, p.cfg.Pipeline.FuzzyDedup, p.cfg.Pipeline.FuzzyThreshold)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Dedupe",
		Summary: fmt.Sprintf("%d duplicates removed, %d kept", before-len(kept), len(kept)),
	})

	// Step 5: Store
	log.Println("Step 5/6: Storing run...")
	article.SortForReport(kept)
	r.Kept = kept

	meta := report.Meta{GeneratedAt: p.now(), DaysWindow: days, RelevanceMin: relevanceMin}
	digest := report.BuildDigest(kept, meta)

	if err := p.db.InsertArticles(runID, kept); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Store", Err: err})
		return r
	}
	if err := p.db.FinishRun(runID, stats.SourcesOK, stats.SourcesFailed, stats.ItemsSeen, len(kept), digest); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Store", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("run %d: %d articles", runID, len(kept)),
	})

	// Step 6: Render report + CSV
	log.Println("Step 6/6: Rendering report...")
	step := p.render(kept, meta, opts.OutDir)
	r.Steps = append(r.Steps, step)

	return r
}

// DryRun collects and analyzes without persisting or rendering.
func (p *Pipeline) DryRun(ctx context.Context, opts Options) *Result {
	r := &Result{Rejected: make(map[string]int)}

	days := p.cfg.Pipeline.DaysWindow
	if opts.DaysWindow > 0 {
		days = opts.DaysWindow
	}
	relevanceMin := p.cfg.Pipeline.RelevanceMin
	if opts.RelevanceMin >= 0 {
		relevanceMin = opts.RelevanceMin
	}

	items, stats := p.collect(ctx)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d entries from %d sources (%d failed)", stats.ItemsSeen, stats.SourcesOK, stats.SourcesFailed),
	})

	kept := p.analyze(ctx, items, days, relevanceMin, r.Rejected)
	kept = article.Dedupe(kept, p.cfg.Pipeline.FuzzyDedup, p.cfg.Pipeline.FuzzyThreshold)
	article.SortForReport(kept)
	r.Kept = kept
	r.Steps = append(r.Steps, StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("[dry-run] %d would be kept of %d", len(kept), len(items)),
	})

	return r
}

func (p *Pipeline) collect(ctx context.Context) ([]collect.RawItem, collect.Stats) {
	fetcher := collect.NewFetcher(
		time.Duration(p.cfg.Fetch.TimeoutSeconds)*time.Second,
		p.cfg.Fetch.UserAgent,
		p.cfg.Fetch.MaxRetries,
		p.cfg.Fetch.MaxPerFeed,
	)
	sources := make([]collect.Source, len(p.cfg.Sources))
	for i, s := range p.cfg.Sources {
		sources[i] = collect.Source{
			Name:      s.Name,
			URL:       s.URL,
			Language:  s.Language,
			Authority: s.Authority,
			Category:  s.Category,
		}
	}
	return fetcher.FetchAll(ctx, sources)
}

// analyze runs admission, the day window, translation and scoring over raw
// items, counting each rejection reason.
func (p *Pipeline) analyze(ctx context.Context, items []collect.RawItem, days int, relevanceMin float64, rejected map[string]int) []article.Article {
	policy, err := triage.ParsePolicy(p.cfg.Pipeline.Cooccurrence)
	if err != nil {
		// validated at config load; unreachable with a loaded config
		policy = triage.PolicySentence
	}
	filter := triage.New(policy)
	scorer := score.New(score.Thresholds{
		High:   p.cfg.Pipeline.HighPriorityMin,
		Medium: p.cfg.Pipeline.MedPriorityMin,
	}).WithClock(p.now)

	cutoff := p.now().AddDate(0, 0, -days)
	var kept []article.Article

	for _, item := range items {
		// Clean the feed summary and keep its first two sentences.
		summary := textnorm.CleanBoilerplate(item.Summary)
		if sentences := textnorm.SplitSentences(summary); len(sentences) > 0 {
			if len(sentences) > 2 {
				sentences = sentences[:2]
			}
			summary = strings.Join(sentences, " ")
		}

		// Translate before filtering: admission and scoring both run on the
		// displayed text, and the taxonomy is bilingual.
		language := textnorm.DetectLanguage(item.Title + " " + summary)
		translated := false
		if item.Source.Language == "en" || language == "en" {
			out, ok, err := p.translator.Translate(ctx, summary)
			if err != nil {
				log.Printf("translation failed for %q: %v", item.Title, err)
			}
			summary, translated = out, ok
		}
		summary = textnorm.Truncate(summary, p.cfg.Pipeline.MaxSummaryChars)

		verdict := filter.Admit(item.Title, summary)
		if !verdict.Admit {
			rejected[verdict.Reason]++
			continue
		}

		// Undated items pass the window with the run timestamp.
		published := item.Published
		if !item.HasDate {
			published = p.now()
		}
		if published.Before(cutoff) {
			rejected["outside_window"]++
			continue
		}

		normText := textnorm.Normalize(item.Title + " " + summary)
		relevance := scorer.Relevance(normText, published, item.Source.Authority)
		if relevance < relevanceMin {
			rejected["below_relevance"]++
			continue
		}

		keywordScore := scorer.KeywordScore(normText)
		kept = append(kept, article.Article{
			Title:        item.Title,
			Link:         item.Link,
			Summary:      summary,
			Source:       item.Source.Name,
			Published:    published,
			Language:     language,
			Translated:   translated,
			Relevance:    relevance,
			KeywordScore: keywordScore,
			Priority:     scorer.Priority(keywordScore),
			Theme:        taxonomy.ClassifyTheme(normText),
			Tags:         taxonomy.Tags(normText),
			Hash:         article.HashID(item.Title, item.Link),
		})
	}
	return kept
}

func (p *Pipeline) render(kept []article.Article, meta report.Meta, outDir string) StepResult {
	dir := p.cfg.Output.ReportDir
	if outDir != "" {
		dir = outDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StepResult{Name: "Render", Err: fmt.Errorf("creating report directory: %w", err)}
	}

	htmlPath := filepath.Join(dir, p.cfg.Output.ReportFile)
	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return StepResult{Name: "Render", Err: err}
	}
	defer htmlFile.Close()
	if err := report.WriteHTML(htmlFile, kept, meta); err != nil {
		return StepResult{Name: "Render", Err: err}
	}

	csvPath := filepath.Join(dir, p.cfg.Output.CSVFile)
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return StepResult{Name: "Render", Err: err}
	}
	defer csvFile.Close()
	if err := report.WriteCSV(csvFile, kept); err != nil {
		return StepResult{Name: "Render", Err: err}
	}

	return StepResult{
		Name:    "Render",
		Summary: fmt.Sprintf("%s, %s", htmlPath, csvPath),
	}
}
