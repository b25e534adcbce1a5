// Package persistence provides SQLite-based board storage: unlocked GM
// sessions, the last good sheet snapshot, and board metadata.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexmapp/internal/sheet"
)

// DB wraps a SQLite connection for board persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS gm_sessions (
		id TEXT PRIMARY KEY,
		unlocked_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_rows (
		row_index INTEGER PRIMARY KEY,
		fields_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS board_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SetGMFlag persists or clears the unlocked flag for a session.
func (db *DB) SetGMFlag(sessionID string, on bool) error {
	if !on {
		_, err := db.conn.Exec("DELETE FROM gm_sessions WHERE id = ?", sessionID)
		return err
	}
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO gm_sessions (id, unlocked_at) VALUES (?, ?)",
		sessionID, time.Now().Unix(),
	)
	return err
}

// GMFlag reports whether a session was unlocked.
func (db *DB) GMFlag(sessionID string) (bool, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM gm_sessions WHERE id = ?", sessionID)
	return n > 0, err
}

// SaveSnapshot replaces the stored sheet with records, preserving row order.
func (db *DB) SaveSnapshot(records []sheet.Record) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sheet_rows"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO sheet_rows (row_index, fields_json) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		fieldsJSON, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		// Row position is the join key, so store the slice position, not r.Row.
		if _, err := stmt.Exec(i, string(fieldsJSON)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO board_meta (key, value) VALUES (?, ?)",
		"snapshot_at", time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("sheet snapshot saved", "rows", len(records))
	return nil
}

type snapshotRow struct {
	RowIndex   int    `db:"row_index"`
	FieldsJSON string `db:"fields_json"`
}

// LoadSnapshot returns the stored sheet in row order and when it was saved.
// Returns no records and a zero time if nothing has been saved.
func (db *DB) LoadSnapshot() ([]sheet.Record, time.Time, error) {
	var rows []snapshotRow
	if err := db.conn.Select(&rows, "SELECT row_index, fields_json FROM sheet_rows ORDER BY row_index"); err != nil {
		return nil, time.Time{}, err
	}
	if len(rows) == 0 {
		return nil, time.Time{}, nil
	}

	records := make([]sheet.Record, len(rows))
	for i, row := range rows {
		var fields map[string]string
		if err := json.Unmarshal([]byte(row.FieldsJSON), &fields); err != nil {
			return nil, time.Time{}, fmt.Errorf("decode row %d: %w", row.RowIndex, err)
		}
		records[i] = sheet.Record{Row: i, Fields: fields}
	}

	var savedAt time.Time
	if v, err := db.GetMeta("snapshot_at"); err == nil {
		savedAt, _ = time.Parse(time.RFC3339, v)
	}
	return records, savedAt, nil
}

// SaveMeta stores a key-value pair in board metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO board_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM board_meta WHERE key = ?", key)
	return value, err
}

// IsNotFound reports whether err means a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
