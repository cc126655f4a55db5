package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lightline-cli/internal/model"
)

type LevelRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Events    int       `json:"events"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NormalizeLevelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("level name is empty")
	}
	return name, nil
}

func (s Store) ListLevels(ctx context.Context) ([]LevelRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, name, json, hash, created_at_unixms, updated_at_unixms FROM levels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LevelRecord{}
	for rows.Next() {
		rec, _, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateLevel inserts a new level under a unique name.
func (s Store) CreateLevel(ctx context.Context, name string, lvl model.Level) (LevelRecord, error) {
	name, err := NormalizeLevelName(name)
	if err != nil {
		return LevelRecord{}, err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return LevelRecord{}, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM levels WHERE name = ?`, name).Scan(&n); err != nil {
		return LevelRecord{}, err
	}
	if n > 0 {
		return LevelRecord{}, fmt.Errorf("level already exists: %s", name)
	}

	raw, err := json.Marshal(lvl)
	if err != nil {
		return LevelRecord{}, err
	}
	now := time.Now().UTC()
	rec := LevelRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Hash:      lvl.Hash(),
		Events:    len(lvl.Events),
		CreatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
		UpdatedAt: time.UnixMilli(now.UnixMilli()).UTC(),
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO levels(id, name, json, hash, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, string(raw), rec.Hash, now.UnixMilli(), now.UnixMilli()); err != nil {
		return LevelRecord{}, err
	}
	return rec, nil
}

// LoadLevel returns the last saved version of a level.
func (s Store) LoadLevel(ctx context.Context, name string) (model.Level, LevelRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Level{}, LevelRecord{}, err
	}
	defer db.Close()
	return loadLevel(ctx, db, name)
}

func loadLevel(ctx context.Context, db *sql.DB, name string) (model.Level, LevelRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT id, name, json, hash, created_at_unixms, updated_at_unixms FROM levels WHERE name = ?`, strings.TrimSpace(name))
	rec, lvl, err := scanLevel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Level{}, LevelRecord{}, NotFoundError{Kind: "level", Name: name}
	}
	return lvl, rec, err
}

// SaveLevel overwrites the saved version of an existing level.
func (s Store) SaveLevel(ctx context.Context, name string, lvl model.Level) (LevelRecord, error) {
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

	rec, err := saveLevelTx(ctx, tx, name, lvl)
	if err != nil {
		return LevelRecord{}, err
	}
	return rec, tx.Commit()
}

func saveLevelTx(ctx context.Context, tx *sql.Tx, name string, lvl model.Level) (LevelRecord, error) {
	var (
		rec       LevelRecord
		createdMs int64
	)
	err := tx.QueryRowContext(ctx, `SELECT id, name, created_at_unixms FROM levels WHERE name = ?`, strings.TrimSpace(name)).
		Scan(&rec.ID, &rec.Name, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return LevelRecord{}, NotFoundError{Kind: "level", Name: name}
	}
	if err != nil {
		return LevelRecord{}, err
	}
	raw, err := json.Marshal(lvl)
	if err != nil {
		return LevelRecord{}, err
	}
	nowMs := time.Now().UTC().UnixMilli()
	rec.Hash = lvl.Hash()
	rec.Events = len(lvl.Events)
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(nowMs).UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE levels SET json = ?, hash = ?, updated_at_unixms = ? WHERE id = ?`,
		string(raw), rec.Hash, nowMs, rec.ID); err != nil {
		return LevelRecord{}, err
	}
	return rec, nil
}

// DeleteLevel removes a level together with its session.
func (s Store) DeleteLevel(ctx context.Context, name string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM levels WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "level", Name: name}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLevel(row rowScanner) (LevelRecord, model.Level, error) {
	var (
		rec                LevelRecord
		js                 string
		createdMs, updated int64
		lvl                model.Level
	)
	if err := row.Scan(&rec.ID, &rec.Name, &js, &rec.Hash, &createdMs, &updated); err != nil {
		return LevelRecord{}, model.Level{}, err
	}
	if err := json.Unmarshal([]byte(js), &lvl); err != nil {
		return LevelRecord{}, model.Level{}, fmt.Errorf("decode level %s: %w", rec.Name, err)
	}
	if lvl.Events == nil {
		lvl.Events = []model.TimedEvent{}
	}
	rec.Events = len(lvl.Events)
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, lvl, nil
}
