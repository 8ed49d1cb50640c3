// Package sqlitehistory persists line editor history in a SQLite database.
package sqlitehistory

import (
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/alimpfard/readline/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	line TEXT NOT NULL
);
`

// Store is a readline.HistoryPersister backed by one SQLite table. Save
// replaces the stored lines wholesale.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	log.Debug(log.CatHistory, "Opening history database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatHistory, "Failed to open history database", err, "path", path)
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatHistory, "Failed to create history schema", err, "path", path)
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored lines, oldest first.
func (s *Store) Load() ([]string, error) {
	rows, err := s.db.Query(`SELECT line FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return lines, nil
}

// Save stores lines in one transaction, dropping whatever was there.
func (s *Store) Save(lines []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO history (line) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.Exec(line); err != nil {
			return fmt.Errorf("inserting history line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	log.Debug(log.CatHistory, "Saved history", "path", s.path, "entries", len(lines))
	return nil
}
