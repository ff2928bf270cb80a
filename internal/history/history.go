// Package history provides an SQLite archive of finished tutoring
// sessions. The archive is written once at termination and read only by
// the history/export commands; live sessions are never resumed from it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillworks/quill/pkg/models"
)

// DB wraps an SQLite database connection with archive operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns the path to the archive database under the XDG data dir.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "quill", "history.db")
}

// Open opens the archive database at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{
		conn: conn,
		path: path,
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// migrate applies all pending schema migrations.
func (db *DB) migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Sessions},
		{2, migrationV2LogEntries},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Sessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	topic TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	outcome TEXT NOT NULL,
	turn_count INTEGER NOT NULL DEFAULT 0,
	max_turns INTEGER NOT NULL DEFAULT 0,
	archived_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_archived_at ON sessions(archived_at);
`

const migrationV2LogEntries = `
CREATE TABLE IF NOT EXISTS log_entries (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	timestamp DATETIME NOT NULL,
	agent TEXT NOT NULL,
	category TEXT NOT NULL,
	content TEXT NOT NULL,
	rationale TEXT
);

CREATE INDEX IF NOT EXISTS idx_log_entries_session_id ON log_entries(session_id);
`

// SessionRecord is one archived session summary.
type SessionRecord struct {
	ID         string
	Topic      string
	Difficulty models.Difficulty
	Outcome    string
	TurnCount  int
	MaxTurns   int
	ArchivedAt time.Time
}

// SaveSession archives a finished session and its full activity log in one
// transaction. Implements the engine's Archiver interface.
func (db *DB) SaveSession(state models.SessionState, entries []models.LogEntry, outcome string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO sessions (id, topic, difficulty, outcome, turn_count, max_turns, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, state.ID, state.Topic, string(state.Difficulty), outcome, state.TurnCount, state.MaxTurns, formatTime(time.Now()))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}

	for seq, entry := range entries {
		_, err = tx.Exec(`
			INSERT INTO log_entries (id, session_id, seq, timestamp, agent, category, content, rationale)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, entry.ID, state.ID, seq, formatTime(entry.Timestamp), string(entry.Agent), string(entry.Category), entry.Content, entry.Rationale)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert log entry %d: %w", seq, err)
		}
	}

	return tx.Commit()
}

// ListSessions returns archived session summaries, newest first.
func (db *DB) ListSessions() ([]SessionRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, topic, difficulty, outcome, turn_count, max_turns, archived_at
		FROM sessions ORDER BY archived_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var difficulty, archivedAt string
		if err := rows.Scan(&rec.ID, &rec.Topic, &difficulty, &rec.Outcome, &rec.TurnCount, &rec.MaxTurns, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Difficulty = models.Difficulty(difficulty)
		if t, err := parseTime(archivedAt); err == nil {
			rec.ArchivedAt = t
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetTranscript returns the full activity log of an archived session in
// append order.
func (db *DB) GetTranscript(sessionID string) ([]models.LogEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, timestamp, agent, category, content, COALESCE(rationale, '')
		FROM log_entries WHERE session_id = ? ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var ts, agent, category string
		if err := rows.Scan(&entry.ID, &ts, &agent, &category, &entry.Content, &entry.Rationale); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entry.Agent = models.AgentID(agent)
		entry.Category = models.LogCategory(category)
		if t, err := parseTime(ts); err == nil {
			entry.Timestamp = t
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no transcript for session %s", sessionID)
	}

	return entries, rows.Err()
}

// PurgeOldSessions deletes archived sessions older than the given duration.
// Returns the number of sessions deleted.
func (db *DB) PurgeOldSessions(olderThan time.Duration) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE archived_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return count, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
