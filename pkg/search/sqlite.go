package search

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteIndex stores references in SQLite. It uses an FTS5 table when the
// sqlite3 build provides one and falls back to LIKE matching otherwise.
type SQLiteIndex struct {
	db     *sql.DB
	useFTS bool
	log    logrus.FieldLogger
}

// NewSQLiteIndex opens (or creates) the index database at dbPath.
func NewSQLiteIndex(dbPath string, log logrus.FieldLogger) (*SQLiteIndex, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{db: db, log: log.WithField("component", "search")}
	if err := idx.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// init creates the database schema
func (idx *SQLiteIndex) init() error {
	idx.useFTS = idx.checkFTS5Support()

	schema := `
	CREATE TABLE IF NOT EXISTS refs (
		id TEXT PRIMARY KEY,
		fields TEXT NOT NULL,
		folded TEXT NOT NULL,
		updated_at TIMESTAMP
	);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return err
	}

	if idx.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			id UNINDEXED,
			head,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
		`
		if _, err := idx.db.Exec(ftsSchema); err != nil {
			idx.log.WithError(err).Debug("fts5 unavailable, using LIKE search")
			idx.useFTS = false
		}
	}
	return nil
}

// checkFTS5Support checks if FTS5 module is available
func (idx *SQLiteIndex) checkFTS5Support() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// SetReference implements Index. The first field is stored as the head
// column, which bm25 weighs above the rest.
func (idx *SQLiteIndex) SetReference(id string, fields ...string) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields for %s: %w", id, err)
	}
	folded := make([]string, len(fields))
	for i, f := range fields {
		folded[i] = strings.Join(Tokenize(f), " ")
	}
	var head, body string
	if len(folded) > 0 {
		head = folded[0]
		body = strings.Join(folded[1:], " ")
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM refs_fts WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Exec("INSERT INTO refs_fts (id, head, body) VALUES (?, ?, ?)", id, head, body); err != nil {
			return err
		}
	}
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO refs (id, fields, folded, updated_at)
		VALUES (?, ?, ?, ?)
	`, id, string(raw), strings.Join(folded, " "), time.Now())
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteReference implements Index.
func (idx *SQLiteIndex) DeleteReference(id string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM refs_fts WHERE id = ?", id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM refs WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Search implements Index.
func (idx *SQLiteIndex) Search(text string) (*Query, error) {
	q := newQuery(text)
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return q, nil
	}
	if idx.useFTS {
		return q, idx.searchWithFTS(q, tokens)
	}
	return q, idx.searchWithoutFTS(q, tokens)
}

// searchWithFTS ranks with bm25; FTS5 reports better matches as more negative.
func (idx *SQLiteIndex) searchWithFTS(q *Query, tokens []string) error {
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = `"` + tok + `"`
	}
	terms[len(terms)-1] += "*"

	rows, err := idx.db.Query(`
		SELECT id, bm25(refs_fts, 0.0, 10.0, 1.0)
		FROM refs_fts
		WHERE refs_fts MATCH ?
	`, strings.Join(terms, " "))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			rank float64
		)
		if err := rows.Scan(&id, &rank); err != nil {
			return err
		}
		q.Scores[id] = -rank
	}
	return rows.Err()
}

// searchWithoutFTS requires every token as a substring of the folded text.
// All matches score the same.
func (idx *SQLiteIndex) searchWithoutFTS(q *Query, tokens []string) error {
	conditions := make([]string, len(tokens))
	args := make([]any, len(tokens))
	for i, tok := range tokens {
		conditions[i] = "folded LIKE ?"
		args[i] = "%" + tok + "%"
	}

	rows, err := idx.db.Query(
		"SELECT id FROM refs WHERE "+strings.Join(conditions, " AND "),
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		q.Scores[id] = 1
	}
	return rows.Err()
}

// Fields returns the fields last stored for id.
func (idx *SQLiteIndex) Fields(id string) ([]string, bool, error) {
	var raw string
	err := idx.db.QueryRow("SELECT fields FROM refs WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var fields []string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, false, fmt.Errorf("decode fields for %s: %w", id, err)
	}
	return fields, true, nil
}

// Len implements Index.
func (idx *SQLiteIndex) Len() int {
	var n int
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&n); err != nil {
		idx.log.WithError(err).Warn("count references")
		return 0
	}
	return n
}

// Close closes the index
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}
