package database

import (
	"database/sql"
	"fmt"
)

// BeginRun opens a new run row and returns its ID.
func (db *DB) BeginRun() (int64, error) {
	result, err := db.conn.Exec("INSERT INTO runs DEFAULT VALUES")
	if err != nil {
		return 0, fmt.Errorf("starting run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun records the final counters and digest for a run.
func (db *DB) FinishRun(runID int64, sourcesOK, sourcesFailed, itemsSeen, itemsKept int, digestMarkdown string) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET finished_at = datetime('now'), sources_ok = ?,
		 sources_failed = ?, items_seen = ?, items_kept = ?, digest_markdown = ?
		 WHERE id = ?`,
		sourcesOK, sourcesFailed, itemsSeen, itemsKept, digestMarkdown, runID,
	)
	return err
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(runID int64) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, started_at, finished_at, sources_ok, sources_failed,
		 items_seen, items_kept, digest_markdown FROM runs WHERE id = ?`, runID,
	)
	return scanRun(row)
}

// GetLatestRun returns the most recent finished run, or nil when none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, started_at, finished_at, sources_ok, sources_failed,
		 items_seen, items_kept, digest_markdown
		 FROM runs WHERE finished_at IS NOT NULL ORDER BY id DESC LIMIT 1`,
	)
	return scanRun(row)
}

// GetAllRuns returns all runs, newest first.
func (db *DB) GetAllRuns() ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, sources_ok, sources_failed,
		 items_seen, items_kept, digest_markdown FROM runs ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.SourcesOK,
			&r.SourcesFailed, &r.ItemsSeen, &r.ItemsKept, &r.DigestMarkdown); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStats returns aggregate counts across the whole database.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&s.Runs); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&s.Articles); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM translations").Scan(&s.Translations); err != nil {
		return nil, err
	}
	err := db.conn.QueryRow(
		"SELECT finished_at FROM runs WHERE finished_at IS NOT NULL ORDER BY id DESC LIMIT 1",
	).Scan(&s.LastRun)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return &s, nil
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.SourcesOK,
		&r.SourcesFailed, &r.ItemsSeen, &r.ItemsKept, &r.DigestMarkdown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
