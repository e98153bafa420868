// Package index keeps a SQLite copy of the journal for full-text search and
// statistics. The journal file stays the source of truth; the index is
// rebuilt from it whenever it falls behind.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/forgecore/internal/chunker"
	"github.com/rcliao/forgecore/internal/model"
)

// Chunk sources.
const (
	SourceText   = "text"
	SourceScript = "script"
)

// Index is a SQLite database of journal entries and their searchable chunks.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	ix := &Index{db: db, path: path}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return ix, nil
}

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          INTEGER PRIMARY KEY,
		request_id  TEXT,
		kind        TEXT NOT NULL,
		category    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT '',
		error_kind  TEXT NOT NULL DEFAULT '',
		prompt      TEXT NOT NULL DEFAULT '',
		message     TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT '',
		goal        TEXT NOT NULL DEFAULT '',
		calls       INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category, status);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);

	CREATE TABLE IF NOT EXISTS chunks (
		entry_id    INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		source      TEXT NOT NULL,
		text        TEXT NOT NULL,
		start_line  INTEGER,
		end_line    INTEGER,
		PRIMARY KEY (entry_id, seq)
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
		text,
		content=chunks,
		content_rowid=rowid
	);

	CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
		INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
	END;
	CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
		INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
	END;
	`
	_, err := ix.db.Exec(schema)
	return err
}

// LastID returns the highest indexed entry id, or 0 for an empty index.
func (ix *Index) LastID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := ix.db.QueryRowContext(ctx, `SELECT MAX(id) FROM entries`).Scan(&id); err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// Sync indexes the entries newer than the last indexed id and returns how
// many were added. Entries must be in journal order. When the journal no
// longer contains the last indexed id (it was replaced or rewritten) the
// index is rebuilt from scratch.
func (ix *Index) Sync(ctx context.Context, entries []model.Entry) (int, error) {
	last, err := ix.LastID(ctx)
	if err != nil {
		return 0, fmt.Errorf("read last id: %w", err)
	}
	if last > 0 && !contains(entries, last) {
		return ix.Rebuild(ctx, entries)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, e := range entries {
		if e.ID <= last {
			continue
		}
		if err := insertEntry(ctx, tx, e); err != nil {
			return 0, fmt.Errorf("index entry %d: %w", e.ID, err)
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Rebuild drops every indexed entry and indexes entries again.
func (ix *Index) Rebuild(ctx context.Context, entries []model.Entry) (int, error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := insertEntry(ctx, tx, e); err != nil {
			return 0, fmt.Errorf("index entry %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func contains(entries []model.Entry, id int64) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func insertEntry(ctx context.Context, tx *sql.Tx, e model.Entry) error {
	var status, errKind, message string
	if e.Result != nil {
		status, errKind, message = string(e.Result.Status), string(e.Result.Kind), e.Result.Message
	}
	calls := 0
	script := ""
	if e.Action != nil {
		calls, script = e.Action.Calls, e.Action.Script
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO entries (id, request_id, kind, category, status, error_kind, prompt, message, note, goal, calls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RequestID, e.Kind, e.Category.String(), status, errKind,
		e.Prompt, message, e.Note, e.Goal, calls, e.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	seq := 0
	insert := func(source string, chunks []chunker.ChunkResult) error {
		for _, c := range chunks {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO chunks (entry_id, seq, source, text, start_line, end_line)
				VALUES (?, ?, ?, ?, ?, ?)`,
				e.ID, seq, source, c.Text, c.StartLine, c.EndLine); err != nil {
				return err
			}
			seq++
		}
		return nil
	}
	if err := insert(SourceText, chunker.Chunk(entryText(e, message), chunker.DefaultOptions())); err != nil {
		return err
	}
	return insert(SourceScript, chunker.Chunk(script, chunker.DefaultOptions()))
}

// entryText is the prose searched for an entry, one field per line.
func entryText(e model.Entry, message string) string {
	var lines []string
	for _, s := range []string{e.Prompt, e.Goal, e.Note, message} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}
