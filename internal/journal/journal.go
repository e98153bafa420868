// Package journal is the append-only memory store. All entries live in one
// JSON file that is rewritten atomically on every append.
package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/model"
)

// Schema is the version written to new files. Readers ignore fields they
// do not know, so files from newer versions still load.
const Schema = 1

var (
	// ErrExternallyModified means the file changed on disk since this store
	// last read or wrote it. Nothing was written.
	ErrExternallyModified = errors.New("journal file was modified externally")
	// ErrNoGoal means a progress note was recorded with no goal set.
	ErrNoGoal = errors.New("no goal has been set")
)

// StoreError wraps a journal I/O or consistency failure.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("journal %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type document struct {
	Schema  int           `json:"schema"`
	LastID  int64         `json:"last_id"`
	Records []model.Entry `json:"records"`
}

// fingerprint identifies the file contents this store last saw.
type fingerprint struct {
	exists bool
	size   int64
	mtime  time.Time
	sum    [sha256.Size]byte
}

func (f fingerprint) equal(o fingerprint) bool {
	return f.exists == o.exists && f.size == o.size && f.mtime.Equal(o.mtime) && f.sum == o.sum
}

// Store is the memory journal. It is not safe for concurrent use.
type Store struct {
	path    string
	entries []model.Entry
	lastID  int64
	seen    fingerprint
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the journal at path, creating its directory if needed.
// A missing file is an empty journal.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StoreError{Op: "open", Path: path, Err: err}
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the journal file path.
func (s *Store) Path() string { return s.path }

// Reload discards the in-memory state and reads the file again, accepting
// any changes made by other processes.
func (s *Store) Reload() error { return s.load() }

func (s *Store) load() error {
	data, fp, err := read(s.path)
	if err != nil {
		return &StoreError{Op: "read", Path: s.path, Err: err}
	}
	var doc document
	if fp.exists && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return &StoreError{Op: "decode", Path: s.path, Err: err}
		}
	}
	last := doc.LastID
	for _, e := range doc.Records {
		if e.ID > last {
			last = e.ID
		}
	}
	s.entries, s.lastID, s.seen = doc.Records, last, fp
	s.logger.Debug("journal loaded", zap.String("path", s.path), zap.Int("entries", len(s.entries)), zap.Int64("last_id", last))
	return nil
}

func read(path string) ([]byte, fingerprint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fingerprint{}, nil
	}
	if err != nil {
		return nil, fingerprint{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fingerprint{}, err
	}
	return data, fingerprint{exists: true, size: info.Size(), mtime: info.ModTime(), sum: sha256.Sum256(data)}, nil
}

// Append assigns the next id (and a timestamp when unset) and persists the
// entry. Goal entries need goal text; progress entries are attached to the
// active goal and fail with ErrNoGoal when there is none.
func (s *Store) Append(e model.Entry) (model.Entry, error) {
	if e.Kind == "" {
		e.Kind = model.KindRoute
	}
	switch e.Kind {
	case model.KindGoal:
		if e.Goal == "" {
			return model.Entry{}, &StoreError{Op: "append", Path: s.path, Err: errors.New("goal text is empty")}
		}
	case model.KindProgress:
		g, ok := s.activeGoal()
		if !ok {
			return model.Entry{}, &StoreError{Op: "append", Path: s.path, Err: ErrNoGoal}
		}
		e.GoalID = g.ID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	e.ID = s.lastID + 1
	e = e.Clone()

	records := make([]model.Entry, len(s.entries), len(s.entries)+1)
	copy(records, s.entries)
	records = append(records, e)
	if err := s.write(document{Schema: Schema, LastID: e.ID, Records: records}); err != nil {
		return model.Entry{}, err
	}
	s.entries, s.lastID = records, e.ID
	return e.Clone(), nil
}

// write replaces the file with doc after checking nobody else changed it.
func (s *Store) write(doc document) error {
	_, current, err := read(s.path)
	if err != nil {
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}
	if !current.equal(s.seen) {
		s.logger.Warn("journal changed on disk", zap.String("path", s.path))
		return &StoreError{Op: "write", Path: s.path, Err: ErrExternallyModified}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".journal-*.tmp")
	if err != nil {
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &StoreError{Op: "sync", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &StoreError{Op: "rename", Path: s.path, Err: err}
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return &StoreError{Op: "stat", Path: s.path, Err: err}
	}
	s.seen = fingerprint{exists: true, size: info.Size(), mtime: info.ModTime(), sum: sha256.Sum256(data)}
	return nil
}

// Recent returns at most n entries, newest first. Entries are copies.
func (s *Store) Recent(n int) []model.Entry {
	if n <= 0 {
		return nil
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]model.Entry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i].Clone())
	}
	return out
}

// All returns copies of every entry, oldest first.
func (s *Store) All() []model.Entry {
	out := make([]model.Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// SetGoal records a new daily goal, replacing the active one.
func (s *Store) SetGoal(text string) (model.Entry, error) {
	return s.Append(model.Entry{Kind: model.KindGoal, Category: model.JournalEntry, Goal: text})
}

// AddProgressNote records progress against the active goal.
func (s *Store) AddProgressNote(text string) (model.Entry, error) {
	if text == "" {
		return model.Entry{}, &StoreError{Op: "append", Path: s.path, Err: errors.New("progress note is empty")}
	}
	return s.Append(model.Entry{Kind: model.KindProgress, Category: model.JournalEntry, Note: text})
}

// Goal returns the active goal with its progress notes grouped by day.
func (s *Store) Goal() (model.JournalGoal, error) {
	g, ok := s.activeGoal()
	if !ok {
		return model.JournalGoal{}, ErrNoGoal
	}
	jg := model.JournalGoal{EntryID: g.ID, Text: g.Goal, SetAt: g.Timestamp, Progress: map[string][]model.ProgressNote{}}
	for _, e := range s.entries {
		if e.Kind != model.KindProgress || e.GoalID != g.ID {
			continue
		}
		day := e.Timestamp.UTC().Format(model.DateKey)
		jg.Progress[day] = append(jg.Progress[day], model.ProgressNote{EntryID: e.ID, At: e.Timestamp, Text: e.Note})
	}
	for _, notes := range jg.Progress {
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].EntryID < notes[j].EntryID })
	}
	return jg, nil
}

func (s *Store) activeGoal() (model.Entry, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Kind == model.KindGoal {
			return s.entries[i], true
		}
	}
	return model.Entry{}, false
}
