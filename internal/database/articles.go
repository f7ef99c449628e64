package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/navwatch/navwatch/internal/article"
)

// InsertArticles stores the ranked article list for a run. Position records
// the report ordering so later reads reproduce it exactly.
func (db *DB) InsertArticles(runID int64, articles []article.Article) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO articles
		(run_id, hash, title, link, summary, source, published_at, language,
		 translated, relevance, keyword_score, priority, theme, tags, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range articles {
		tags, err := json.Marshal(a.Tags)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding tags for %q: %w", a.Title, err)
		}
		translated := 0
		if a.Translated {
			translated = 1
		}
		if _, err := stmt.Exec(
			runID, a.Hash, a.Title, a.Link, a.Summary, a.Source,
			a.Published.UTC().Format(time.RFC3339), a.Language,
			translated, a.Relevance, a.KeywordScore, a.Priority,
			a.Theme, string(tags), i,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting article %q: %w", a.Title, err)
		}
	}

	return tx.Commit()
}

// GetRunArticles returns the articles of a run in their stored report order.
func (db *DB) GetRunArticles(runID int64) ([]article.Article, error) {
	rows, err := db.conn.Query(`SELECT hash, title, link, summary, source,
		published_at, language, translated, relevance, keyword_score,
		priority, theme, tags
		FROM articles WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []article.Article
	for rows.Next() {
		var a article.Article
		var published, tags string
		var translated int
		if err := rows.Scan(&a.Hash, &a.Title, &a.Link, &a.Summary, &a.Source,
			&published, &a.Language, &translated, &a.Relevance,
			&a.KeywordScore, &a.Priority, &a.Theme, &tags); err != nil {
			return nil, err
		}
		a.Translated = translated != 0
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			a.Published = t
		}
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
				return nil, fmt.Errorf("decoding tags for %q: %w", a.Title, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
