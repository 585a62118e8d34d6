package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/jera/internal/models"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	position INTEGER NOT NULL,
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	content  TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	created  TEXT NOT NULL DEFAULT '',
	modified TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_notes_position ON notes(position);
`

// SQLite implements Provider on a SQLite database file.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

// Load returns all rows in position order.
func (db *SQLite) Load() ([]models.Note, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, content, category, created, modified
		FROM notes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: load: %w", err)
	}
	defer rows.Close()

	now := db.now().Truncate(time.Second)
	out := []models.Note{}
	for rows.Next() {
		var (
			n                 models.Note
			created, modified string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &created, &modified); err != nil {
			return nil, fmt.Errorf("storage: scan: %w", err)
		}
		n.Created = parseTime(created, now)
		n.Modified = parseTime(modified, now)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Save replaces every row with notes inside a single transaction.
func (db *SQLite) Save(notes []models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	if len(notes) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO notes (position, id, title, content, category, created, modified)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("storage: prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, n := range notes {
			if _, err := stmt.Exec(i, n.ID, n.Title, n.Content, n.Category,
				formatTime(n.Created), formatTime(n.Modified)); err != nil {
				return fmt.Errorf("storage: insert %s: %w", n.ID, err)
			}
		}
	}
	return tx.Commit()
}
