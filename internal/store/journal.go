package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JournalEntry records one action executed against a level.
type JournalEntry struct {
	ID        string          `json:"id"`
	Level     string          `json:"level"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Changed   bool            `json:"changed"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (s Store) AppendJournal(ctx context.Context, level, action string, payload any, changed bool) (JournalEntry, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return JournalEntry{}, err
	}
	defer db.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		return JournalEntry{}, err
	}
	now := time.Now().UTC()
	e := JournalEntry{
		ID:        uuid.NewString(),
		Level:     strings.TrimSpace(level),
		Action:    action,
		Payload:   raw,
		Changed:   changed,
		CreatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO journal(id, level, action, payload_json, changed, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		e.ID, e.Level, e.Action, string(raw), boolToInt(changed), now.UnixMilli()); err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}

// ListJournal returns the newest entries for a level first. An empty level
// lists every level; limit <= 0 lists everything.
func (s Store) ListJournal(ctx context.Context, level string, limit int) ([]JournalEntry, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, level, action, payload_json, changed, created_at_unixms FROM journal`
	var args []any
	if level = strings.TrimSpace(level); level != "" {
		q += ` WHERE level = ?`
		args = append(args, level)
	}
	q += ` ORDER BY created_at_unixms DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []JournalEntry{}
	for rows.Next() {
		var (
			e         JournalEntry
			payload   string
			changed   int
			createdMs int64
		)
		if err := rows.Scan(&e.ID, &e.Level, &e.Action, &payload, &changed, &createdMs); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		e.Changed = changed != 0
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
