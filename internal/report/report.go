// Package report renders the static HTML watch report, the CSV export, and
// the markdown digest stored with each run.
package report

import (
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/navwatch/navwatch/internal/article"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTmpl = template.Must(
	template.New("report.html").Funcs(template.FuncMap{
		"joinTags":   joinTags,
		"levelBadge": levelBadge,
	}).ParseFS(templateFS, "templates/report.html"),
)

// Meta carries the run parameters shown in the report header.
type Meta struct {
	GeneratedAt  time.Time
	DaysWindow   int
	RelevanceMin float64
}

// Stats are the headline numbers above the article table.
type Stats struct {
	Total        int
	High         int
	Translated   int
	Sources      int
	AvgRelevance float64
}

// ComputeStats derives the headline numbers from the article list.
func ComputeStats(articles []article.Article) Stats {
	s := Stats{Total: len(articles)}
	sources := map[string]struct{}{}
	var sum float64
	for _, a := range articles {
		if a.Priority == "HIGH" {
			s.High++
		}
		if a.Translated {
			s.Translated++
		}
		sources[a.Source] = struct{}{}
		sum += a.Relevance
	}
	s.Sources = len(sources)
	if s.Total > 0 {
		s.AvgRelevance = sum / float64(s.Total)
	}
	return s
}

// WriteHTML renders the full report page. Articles must already be in report
// order.
func WriteHTML(w io.Writer, articles []article.Article, meta Meta) error {
	data := map[string]any{
		"Articles": articles,
		"Meta":     meta,
		"Stats":    ComputeStats(articles),
		"Themes":   themes(articles),
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// csvHeader matches the columns of the in-page CSV export.
var csvHeader = []string{
	"Titre", "Lien", "Date", "Source", "Résumé",
	"Niveau", "Score", "Thème", "Pertinence", "Tags",
}

// WriteCSV writes the article list as CSV with the same columns as the
// report's export button.
func WriteCSV(w io.Writer, articles []article.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range articles {
		record := []string{
			a.Title,
			a.Link,
			a.Published.Format("2006-01-02"),
			a.Source,
			a.Summary,
			a.Priority,
			fmt.Sprintf("%d", a.KeywordScore),
			a.Theme,
			fmt.Sprintf("%.3f", a.Relevance),
			joinTags(a.Tags),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildDigest produces a markdown summary of the run, grouped by priority.
// Stored with the run and rendered by the web UI.
func BuildDigest(articles []article.Article, meta Meta) string {
	var b strings.Builder
	stats := ComputeStats(articles)

	fmt.Fprintf(&b, "# Veille IA – Naval & Défense\n\n")
	fmt.Fprintf(&b, "Généré : %s UTC • Fenêtre %d jours • %d articles (%d priorité haute, %d sources)\n",
		meta.GeneratedAt.UTC().Format("2006-01-02 15:04"),
		meta.DaysWindow, stats.Total, stats.High, stats.Sources)

	for _, level := range []string{"HIGH", "MEDIUM", "LOW"} {
		var section []article.Article
		for _, a := range articles {
			if a.Priority == level {
				section = append(section, a)
			}
		}
		if len(section) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", level)
		for _, a := range section {
			fmt.Fprintf(&b, "- [%s](%s) — %s, %s (pertinence %.3f)\n",
				a.Title, a.Link, a.Source, a.Published.Format("2006-01-02"), a.Relevance)
		}
	}
	return b.String()
}

func themes(articles []article.Article) []string {
	set := map[string]struct{}{}
	for _, a := range articles {
		if a.Theme != "" {
			set[a.Theme] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "—"
	}
	return strings.Join(tags, ", ")
}

func levelBadge(priority string) string {
	switch priority {
	case "HIGH":
		return "bg-red-600"
	case "MEDIUM":
		return "bg-orange-600"
	case "LOW":
		return "bg-green-600"
	}
	return "bg-gray-600"
}
