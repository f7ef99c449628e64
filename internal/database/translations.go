package database

import "database/sql"

// GetTranslation looks up a cached translation by source-text hash.
// Implements translate.Cache.
func (db *DB) GetTranslation(hash string) (string, bool, error) {
	var out string
	err := db.conn.QueryRow(
		"SELECT translated_text FROM translations WHERE hash = ?", hash,
	).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// PutTranslation stores a translation, replacing any previous entry.
func (db *DB) PutTranslation(hash, sourceText, translatedText string) error {
	_, err := db.conn.Exec(
		`INSERT INTO translations (hash, source_text, translated_text)
		 VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET translated_text = excluded.translated_text`,
		hash, sourceText, translatedText,
	)
	return err
}
