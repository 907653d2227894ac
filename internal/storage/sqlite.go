package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Tiliavir/trackmytime/internal/model"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore keeps every collection in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  details TEXT NOT NULL DEFAULT '',
  seq INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '',
  seq INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  start_at TEXT NOT NULL,
  end_at TEXT,
  external_id TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS entry_tags (
  entry_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  PRIMARY KEY (entry_id, tag_id)
);
CREATE INDEX IF NOT EXISTS entries_start_idx ON entries(start_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Entries() Collection[model.Entry]    { return &sqliteEntries{db: s.db} }
func (s *SQLiteStore) Projects() Collection[model.Project] { return &sqliteProjects{db: s.db} }
func (s *SQLiteStore) Tags() Collection[model.Tag]         { return &sqliteTags{db: s.db} }
func (s *SQLiteStore) Close() error                        { return s.db.Close() }

func exists(ctx context.Context, db *sql.DB, table, id string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return n > 0, nil
}

func affected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

type sqliteProjects struct {
	db *sql.DB
}

func (p *sqliteProjects) List(ctx context.Context) ([]model.Project, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, details FROM projects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	projects := []model.Project{}
	for rows.Next() {
		var pr model.Project
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Details); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, pr)
	}
	return projects, rows.Err()
}

func (p *sqliteProjects) Get(ctx context.Context, id string) (model.Project, error) {
	var pr model.Project
	err := p.db.QueryRowContext(ctx, `SELECT id, name, details FROM projects WHERE id = ?`, id).
		Scan(&pr.ID, &pr.Name, &pr.Details)
	if err == sql.ErrNoRows {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project: %w", err)
	}
	return pr, nil
}

func (p *sqliteProjects) Insert(ctx context.Context, pr model.Project) error {
	ok, err := exists(ctx, p.db, "projects", pr.ID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("project %s: %w", pr.ID, ErrExists)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, details, seq) VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM projects))`,
		pr.ID, pr.Name, pr.Details)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (p *sqliteProjects) Update(ctx context.Context, pr model.Project) error {
	res, err := p.db.ExecContext(ctx, `UPDATE projects SET name = ?, details = ? WHERE id = ?`, pr.Name, pr.Details, pr.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return affected(res, "project", pr.ID)
}

func (p *sqliteProjects) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return affected(res, "project", id)
}

type sqliteTags struct {
	db *sql.DB
}

func (t *sqliteTags) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	tags := []model.Tag{}
	for rows.Next() {
		var tg model.Tag
		if err := rows.Scan(&tg.ID, &tg.Name, &tg.ColorHex); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tg)
	}
	return tags, rows.Err()
}

func (t *sqliteTags) Get(ctx context.Context, id string) (model.Tag, error) {
	var tg model.Tag
	err := t.db.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE id = ?`, id).
		Scan(&tg.ID, &tg.Name, &tg.ColorHex)
	if err == sql.ErrNoRows {
		return model.Tag{}, fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return tg, nil
}

func (t *sqliteTags) Insert(ctx context.Context, tg model.Tag) error {
	ok, err := exists(ctx, t.db, "tags", tg.ID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("tag %s: %w", tg.ID, ErrExists)
	}
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, color, seq) VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tags))`,
		tg.ID, tg.Name, tg.ColorHex)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (t *sqliteTags) Update(ctx context.Context, tg model.Tag) error {
	res, err := t.db.ExecContext(ctx, `UPDATE tags SET name = ?, color = ? WHERE id = ?`, tg.Name, tg.ColorHex, tg.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return affected(res, "tag", tg.ID)
}

func (t *sqliteTags) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return affected(res, "tag", id)
}

type sqliteEntries struct {
	db *sql.DB
}

const entryColumns = `id, project_id, notes, start_at, end_at, external_id, source`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var (
		e     model.Entry
		start string
		end   sql.NullString
	)
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Notes, &start, &end, &e.ExternalID, &e.Source); err != nil {
		return model.Entry{}, err
	}
	var err error
	if e.Start, err = time.Parse(timeLayout, start); err != nil {
		return model.Entry{}, fmt.Errorf("entry %s: bad start %q: %w", e.ID, start, err)
	}
	if end.Valid {
		t, err := time.Parse(timeLayout, end.String)
		if err != nil {
			return model.Entry{}, fmt.Errorf("entry %s: bad end %q: %w", e.ID, end.String, err)
		}
		e.End = &t
	}
	e.TagIDs = []string{}
	return e, nil
}

func endValue(e model.Entry) any {
	if e.End == nil {
		return nil
	}
	return e.End.Format(timeLayout)
}

func (s *sqliteEntries) tagsByEntry(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entry_id, tag_id FROM entry_tags ORDER BY entry_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list entry tags: %w", err)
	}
	defer rows.Close()
	tags := map[string][]string{}
	for rows.Next() {
		var entryID, tagID string
		if err := rows.Scan(&entryID, &tagID); err != nil {
			return nil, fmt.Errorf("scan entry tag: %w", err)
		}
		tags[entryID] = append(tags[entryID], tagID)
	}
	return tags, rows.Err()
}

func (s *sqliteEntries) List(ctx context.Context) ([]model.Entry, error) {
	tags, err := s.tagsByEntry(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY start_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if ids, ok := tags[e.ID]; ok {
			e.TagIDs = ids
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *sqliteEntries) Get(ctx context.Context, id string) (model.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT tag_id FROM entry_tags WHERE entry_id = ? ORDER BY position`, id)
	if err != nil {
		return model.Entry{}, fmt.Errorf("get entry tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return model.Entry{}, fmt.Errorf("scan entry tag: %w", err)
		}
		e.TagIDs = append(e.TagIDs, tagID)
	}
	return e, rows.Err()
}

func (s *sqliteEntries) Insert(ctx context.Context, e model.Entry) error {
	ok, err := exists(ctx, s.db, "entries", e.ID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("entry %s: %w", e.ID, ErrExists)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.ProjectID, e.Notes, e.Start.Format(timeLayout), endValue(e), e.ExternalID, e.Source)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return writeEntryTags(ctx, tx, e)
	})
}

func (s *sqliteEntries) Update(ctx context.Context, e model.Entry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE entries SET project_id = ?, notes = ?, start_at = ?, end_at = ?, external_id = ?, source = ? WHERE id = ?`,
			e.ProjectID, e.Notes, e.Start.Format(timeLayout), endValue(e), e.ExternalID, e.Source, e.ID)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if err := affected(res, "entry", e.ID); err != nil {
			return err
		}
		return writeEntryTags(ctx, tx, e)
	})
}

func (s *sqliteEntries) Delete(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		if err := affected(res, "entry", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
			return fmt.Errorf("delete entry tags: %w", err)
		}
		return nil
	})
}

func (s *sqliteEntries) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func writeEntryTags(ctx context.Context, tx *sql.Tx, e model.Entry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear entry tags: %w", err)
	}
	seen := map[string]bool{}
	for i, tagID := range e.TagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag_id, position) VALUES (?, ?, ?)`, e.ID, tagID, i); err != nil {
			return fmt.Errorf("insert entry tag: %w", err)
		}
	}
	return nil
}
