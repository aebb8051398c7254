// Package journal provides durable SQLite-backed event journaling for
// the simulation: notable occurrences are buffered in memory and
// flushed in batches.
package journal

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Event is one journaled occurrence.
type Event struct {
	Tick        uint64 `db:"tick" json:"tick"`
	Category    string `db:"category" json:"category"`
	Description string `db:"description" json:"description"`
}

// Journal buffers events and persists them to SQLite. Record is safe
// from the control goroutine; readers and the flusher take the lock.
type Journal struct {
	conn *sqlx.DB

	mu  sync.Mutex
	buf []Event
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close flushes and closes the database.
func (j *Journal) Close() error {
	if err := j.Flush(); err != nil {
		j.conn.Close()
		return err
	}
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// Record buffers one event. Cheap; nothing touches the database until
// the next Flush.
func (j *Journal) Record(tick uint64, category, description string) {
	j.mu.Lock()
	j.buf = append(j.buf, Event{Tick: tick, Category: category, Description: description})
	j.mu.Unlock()
}

// Flush writes all buffered events in one transaction. Call it from a
// periodic layer, not every tick.
func (j *Journal) Flush() error {
	j.mu.Lock()
	pending := j.buf
	j.buf = nil
	j.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (tick, category, description) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range pending {
		if _, err := stmt.Exec(e.Tick, e.Category, e.Description); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}
	return tx.Commit()
}

// RecentEvents returns the most recent limit events, newest first,
// including any still buffered.
func (j *Journal) RecentEvents(limit int) ([]Event, error) {
	j.mu.Lock()
	buffered := make([]Event, 0, limit)
	for i := len(j.buf) - 1; i >= 0 && len(buffered) < limit; i-- {
		buffered = append(buffered, j.buf[i])
	}
	j.mu.Unlock()

	if len(buffered) >= limit {
		return buffered, nil
	}

	var stored []Event
	err := j.conn.Select(&stored,
		"SELECT tick, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit-len(buffered),
	)
	if err != nil {
		return nil, err
	}
	return append(buffered, stored...), nil
}

// CategoryCounts returns per-category event counts within a tick range,
// for the daily summary.
func (j *Journal) CategoryCounts(fromTick, toTick uint64) (map[string]int, error) {
	rows, err := j.conn.Queryx(
		"SELECT category, COUNT(*) FROM events WHERE tick >= ? AND tick < ? GROUP BY category",
		fromTick, toTick,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// SaveMeta stores a key-value pair, replacing any prior value.
func (j *Journal) SaveMeta(key, value string) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (j *Journal) GetMeta(key string) (string, error) {
	var value string
	err := j.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
