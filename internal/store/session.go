package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/history"
	"lightline-cli/internal/model"
)

const (
	stackUndo = "undo"
	stackRedo = "redo"
)

// sessionState is the editor_json column: everything in a session that is not
// the level or its history.
type sessionState struct {
	Name          string              `json:"name"`
	Selection     editor.Selection    `json:"selection"`
	State         editor.EditingState `json:"state"`
	CurrentTime   model.Time          `json:"currentTime"`
	Zoom          model.Coord         `json:"zoom"`
	PlaceRotation model.Angle         `json:"placeRotation"`
	PlaceScale    model.Coord         `json:"placeScale"`
}

// LoadSession returns the working session of a level. A level that was never
// edited gets a fresh session over its saved version.
func (s Store) LoadSession(ctx context.Context, name string) (editor.Session, LevelRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return editor.Session{}, LevelRecord{}, err
	}
	defer db.Close()

	saved, rec, err := loadLevel(ctx, db, name)
	if err != nil {
		return editor.Session{}, LevelRecord{}, err
	}

	var levelJS, bufferJS, labelJS, editorJS string
	err = db.QueryRowContext(ctx, `SELECT level_json, buffer_json, buffer_label_json, editor_json FROM history_meta WHERE level_id = ?`, rec.ID).
		Scan(&levelJS, &bufferJS, &labelJS, &editorJS)
	if errors.Is(err, sql.ErrNoRows) {
		return editor.Session{
			Name:    rec.Name,
			Level:   saved,
			History: history.Snapshot{Buffer: saved.Clone()},
		}, rec, nil
	}
	if err != nil {
		return editor.Session{}, LevelRecord{}, err
	}

	var (
		out   editor.Session
		extra sessionState
	)
	if err := json.Unmarshal([]byte(levelJS), &out.Level); err != nil {
		return editor.Session{}, LevelRecord{}, fmt.Errorf("decode session level: %w", err)
	}
	if err := json.Unmarshal([]byte(bufferJS), &out.History.Buffer); err != nil {
		return editor.Session{}, LevelRecord{}, fmt.Errorf("decode history buffer: %w", err)
	}
	if err := json.Unmarshal([]byte(labelJS), &out.History.BufferLabel); err != nil {
		return editor.Session{}, LevelRecord{}, fmt.Errorf("decode history label: %w", err)
	}
	if err := json.Unmarshal([]byte(editorJS), &extra); err != nil {
		return editor.Session{}, LevelRecord{}, fmt.Errorf("decode editor state: %w", err)
	}
	if out.Level.Events == nil {
		out.Level.Events = []model.TimedEvent{}
	}

	rows, err := db.QueryContext(ctx, `SELECT stack, json FROM history_entries WHERE level_id = ? ORDER BY stack, seq`, rec.ID)
	if err != nil {
		return editor.Session{}, LevelRecord{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var stack, js string
		if err := rows.Scan(&stack, &js); err != nil {
			return editor.Session{}, LevelRecord{}, err
		}
		var lvl model.Level
		if err := json.Unmarshal([]byte(js), &lvl); err != nil {
			return editor.Session{}, LevelRecord{}, fmt.Errorf("decode history entry: %w", err)
		}
		switch stack {
		case stackUndo:
			out.History.Undo = append(out.History.Undo, lvl)
		case stackRedo:
			out.History.Redo = append(out.History.Redo, lvl)
		}
	}
	if err := rows.Err(); err != nil {
		return editor.Session{}, LevelRecord{}, err
	}

	out.Name = rec.Name
	if strings.TrimSpace(extra.Name) != "" {
		out.Name = extra.Name
	}
	out.Selection = extra.Selection
	out.State = extra.State
	out.CurrentTime = extra.CurrentTime
	out.Zoom = extra.Zoom
	out.PlaceRotation = extra.PlaceRotation
	out.PlaceScale = extra.PlaceScale
	return out, rec, nil
}

// SaveSession replaces the stored session of a level. With saveLevel the
// session's level also becomes the saved version, in the same transaction.
func (s Store) SaveSession(ctx context.Context, name string, sess editor.Session, saveLevel bool) (LevelRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return LevelRecord{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return LevelRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var rec LevelRecord
	if saveLevel {
		rec, err = saveLevelTx(ctx, tx, name, sess.Level)
	} else {
		rec, err = levelRecordTx(ctx, tx, name)
	}
	if err != nil {
		return LevelRecord{}, err
	}

	levelJS, err := json.Marshal(sess.Level)
	if err != nil {
		return LevelRecord{}, err
	}
	bufferJS, err := json.Marshal(sess.History.Buffer)
	if err != nil {
		return LevelRecord{}, err
	}
	labelJS, err := json.Marshal(sess.History.BufferLabel)
	if err != nil {
		return LevelRecord{}, err
	}
	editorJS, err := json.Marshal(sessionState{
		Name:          sess.Name,
		Selection:     sess.Selection,
		State:         sess.State,
		CurrentTime:   sess.CurrentTime,
		Zoom:          sess.Zoom,
		PlaceRotation: sess.PlaceRotation,
		PlaceScale:    sess.PlaceScale,
	})
	if err != nil {
		return LevelRecord{}, err
	}

	// Replace-all: sessions are small and rewritten on every command.
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE level_id = ?`, rec.ID); err != nil {
		return LevelRecord{}, err
	}
	insert := func(stack string, levels []model.Level) error {
		for i, lvl := range levels {
			raw, err := json.Marshal(lvl)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO history_entries(level_id, stack, seq, json) VALUES(?, ?, ?, ?)`,
				rec.ID, stack, i, string(raw)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(stackUndo, sess.History.Undo); err != nil {
		return LevelRecord{}, err
	}
	if err := insert(stackRedo, sess.History.Redo); err != nil {
		return LevelRecord{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO history_meta(level_id, level_json, buffer_json, buffer_label_json, editor_json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		rec.ID, string(levelJS), string(bufferJS), string(labelJS), string(editorJS), time.Now().UTC().UnixMilli()); err != nil {
		return LevelRecord{}, err
	}
	return rec, tx.Commit()
}

// ResetSession drops the stored session and history of a level.
func (s Store) ResetSession(ctx context.Context, name string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := levelRecordTx(ctx, tx, name)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE level_id = ?`, rec.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_meta WHERE level_id = ?`, rec.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func levelRecordTx(ctx context.Context, tx *sql.Tx, name string) (LevelRecord, error) {
	var (
		rec                LevelRecord
		createdMs, updated int64
	)
	err := tx.QueryRowContext(ctx, `SELECT id, name, hash, created_at_unixms, updated_at_unixms FROM levels WHERE name = ?`, strings.TrimSpace(name)).
		Scan(&rec.ID, &rec.Name, &rec.Hash, &createdMs, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return LevelRecord{}, NotFoundError{Kind: "level", Name: name}
	}
	if err != nil {
		return LevelRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}
