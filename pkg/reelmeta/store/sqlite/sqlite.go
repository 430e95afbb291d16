package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDSource
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema when missing. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDSource(),
		now: time.Now,
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS selections (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id TEXT UNIQUE NOT NULL,
	scene_id INTEGER NOT NULL,
	asset_json TEXT NOT NULL,
	added_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selections_scene ON selections(scene_id, seq);

CREATE TABLE IF NOT EXISTS searches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword TEXT NOT NULL,
	kind TEXT NOT NULL,
	lang TEXT,
	results INTEGER NOT NULL,
	at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Append(ctx context.Context, sceneID int, asset media.Asset) (store.Selection, error) {
	if err := store.ValidateScene(sceneID); err != nil {
		return store.Selection{}, err
	}

	data, err := json.Marshal(asset)
	if err != nil {
		return store.Selection{}, err
	}

	now := s.now().UTC()
	sel := store.Selection{
		EntryID: s.ids.Next(now),
		SceneID: sceneID,
		Asset:   asset,
		AddedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO selections(entry_id, scene_id, asset_json, added_at) VALUES (?, ?, ?, ?)`,
		sel.EntryID, sceneID, string(data), now.Format(time.RFC3339Nano))
	if err != nil {
		return store.Selection{}, fmt.Errorf("insert selection: %w", err)
	}
	return sel, nil
}

func (s *sqliteStore) Remove(ctx context.Context, sceneID int, entryID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM selections WHERE scene_id = ? AND entry_id = ?`, sceneID, entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: selection %s of scene %d", internalerr.ErrNotFound, entryID, sceneID)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, sceneID int) ([]store.Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, scene_id, asset_json, added_at FROM selections WHERE scene_id = ? ORDER BY seq`, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Selection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

func (s *sqliteStore) All(ctx context.Context) (map[int][]store.Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, scene_id, asset_json, added_at FROM selections ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]store.Selection)
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		out[sel.SceneID] = append(out[sel.SceneID], sel)
	}
	return out, rows.Err()
}

func scanSelection(rows *sql.Rows) (store.Selection, error) {
	var (
		sel       store.Selection
		assetJSON string
		addedAt   string
	)
	if err := rows.Scan(&sel.EntryID, &sel.SceneID, &assetJSON, &addedAt); err != nil {
		return store.Selection{}, err
	}
	if err := json.Unmarshal([]byte(assetJSON), &sel.Asset); err != nil {
		return store.Selection{}, fmt.Errorf("decode selection %s: %w", sel.EntryID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, addedAt)
	if err != nil {
		return store.Selection{}, fmt.Errorf("decode selection %s: %w", sel.EntryID, err)
	}
	sel.AddedAt = t
	return sel, nil
}

func (s *sqliteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM selections`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) RecordSearch(ctx context.Context, rec store.SearchRecord) error {
	if rec.At.IsZero() {
		rec.At = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches(keyword, kind, lang, results, at) VALUES (?, ?, ?, ?, ?)`,
		rec.Keyword, string(rec.Kind), rec.Lang, rec.Results, rec.At.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *sqliteStore) Searches(ctx context.Context, limit int) ([]store.SearchRecord, error) {
	query := `SELECT keyword, kind, lang, results, at FROM searches ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.SearchRecord
	for rows.Next() {
		var (
			rec  store.SearchRecord
			kind string
			lang sql.NullString
			at   string
		)
		if err := rows.Scan(&rec.Keyword, &kind, &lang, &rec.Results, &at); err != nil {
			return nil, err
		}
		rec.Kind = media.Kind(kind)
		rec.Lang = lang.String
		if rec.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
