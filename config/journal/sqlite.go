package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kastheco/glrhs/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS journal_entries (
	id         INTEGER PRIMARY KEY,
	kind       TEXT    NOT NULL,
	timestamp  TEXT    NOT NULL,
	origin     TEXT    NOT NULL DEFAULT 'main',
	channel_id TEXT    NOT NULL DEFAULT '',
	message    TEXT    NOT NULL DEFAULT '',
	detail     TEXT    NOT NULL DEFAULT '',
	level      TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_journal_ts ON journal_entries(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_journal_channel ON journal_entries(channel_id, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteJournal is a Journal backed by a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and runs the schema.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*SQLiteJournal, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		// The main window and popouts share the file.
		dsn = "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for journal: %w", err)
	}
	// An in-memory database exists once per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// Record inserts an entry. A zero Timestamp is set to time.Now().
func (j *SQLiteJournal) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	level := e.Level
	if level == "" {
		level = "info"
	}
	window := e.Window
	if window == "" {
		window = WindowMain
	}

	const q = `
		INSERT INTO journal_entries
			(kind, timestamp, origin, channel_id, message, detail, level)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.Exec(q,
		string(e.Kind),
		formatTime(e.Timestamp),
		string(window),
		e.ChannelID,
		e.Message,
		e.Detail,
		level,
	)
	if err != nil {
		log.WarningLog.Printf("journal: record %s: %v", e.Kind, err)
	}
}

// Query returns entries matching the filter, newest first. Limit is capped at 500.
func (j *SQLiteJournal) Query(f QueryFilter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	var conditions []string
	var args []any

	if f.Window != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, string(f.Window))
	}
	if f.ChannelID != "" {
		conditions = append(conditions, "channel_id = ?")
		args = append(args, f.ChannelID)
	}
	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, formatTime(f.After))
	}
	if !f.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, formatTime(f.Before))
	}

	q := `
		SELECT id, kind, timestamp, origin, channel_id, message, detail, level
		FROM journal_entries
	`
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT %d", limit)

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(
			&e.ID,
			(*string)(&e.Kind),
			&ts,
			(*string)(&e.Window),
			&e.ChannelID,
			&e.Message,
			&e.Detail,
			&e.Level,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Timestamp = parseTime(ts)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// Close releases the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// timeLayout is fixed width so that text order in SQLite is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// formatTime formats t in UTC with timeLayout. Zero time returns "".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime parses a timeLayout string, returning zero time on bad input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
