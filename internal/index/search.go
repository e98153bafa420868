package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchParams filters a search. An empty Query lists matching entries
// newest first.
type SearchParams struct {
	Query    string
	Category string
	Status   string
	Kind     string
	Limit    int
}

// Hit is one matching journal entry.
type Hit struct {
	EntryID   int64     `json:"entry_id"`
	RequestID string    `json:"request_id,omitempty"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Status    string    `json:"status,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Match     *Match    `json:"match,omitempty"`
}

// Match is the best matching chunk of a hit.
type Match struct {
	Source    string `json:"source"`
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Search finds entries whose prompt, notes, message or rendered script
// contain every query term. Terms need not share a chunk; the best
// ranked chunk of each entry is returned as its Match.
func (ix *Index) Search(ctx context.Context, p SearchParams) ([]Hit, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []any
	if p.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, p.Category)
	}
	if p.Status != "" {
		where = append(where, "e.status = ?")
		args = append(args, p.Status)
	}
	if p.Kind != "" {
		where = append(where, "e.kind = ?")
		args = append(args, p.Kind)
	}

	terms := ftsTerms(p.Query)
	if len(terms) == 0 {
		return ix.list(ctx, where, args, limit)
	}

	// Terms may land in different chunks of the same entry.
	for _, t := range terms {
		where = append(where, `e.id IN (
			SELECT ct.entry_id FROM chunks_fts
			JOIN chunks ct ON ct.rowid = chunks_fts.rowid
			WHERE chunks_fts MATCH ?)`)
		args = append(args, t)
	}
	where = append(where, "chunks_fts MATCH ?")
	args = append(args, strings.Join(terms, " OR "))
	q := fmt.Sprintf(`
		SELECT %s, c.source, c.text, c.start_line, c.end_line
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		JOIN entries e ON e.id = c.entry_id
		WHERE %s
		ORDER BY bm25(chunks_fts), e.id DESC`, entryColumns, strings.Join(where, " AND "))

	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	seen := map[int64]bool{}
	for rows.Next() && len(hits) < limit {
		var h Hit
		var m Match
		var created string
		if err := rows.Scan(&h.EntryID, &h.RequestID, &h.Kind, &h.Category, &h.Status,
			&h.Prompt, &h.Message, &created, &m.Source, &m.Text, &m.StartLine, &m.EndLine); err != nil {
			return nil, err
		}
		if seen[h.EntryID] {
			continue
		}
		seen[h.EntryID] = true
		h.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		h.Match = &m
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

const entryColumns = `e.id, COALESCE(e.request_id, ''), e.kind, e.category, e.status, e.prompt, e.message, e.created_at`

func (ix *Index) list(ctx context.Context, where []string, args []any, limit int) ([]Hit, error) {
	cond := ""
	if len(where) > 0 {
		cond = "WHERE " + strings.Join(where, " AND ")
	}
	q := fmt.Sprintf(`SELECT %s FROM entries e %s ORDER BY e.id DESC LIMIT ?`, entryColumns, cond)
	rows, err := ix.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		h, err := scanHit(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func scanHit(rows *sql.Rows) (Hit, error) {
	var h Hit
	var created string
	err := rows.Scan(&h.EntryID, &h.RequestID, &h.Kind, &h.Category, &h.Status, &h.Prompt, &h.Message, &created)
	if err != nil {
		return h, err
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return h, nil
}

// ftsTerms splits free text into quoted FTS5 terms so punctuation in
// prompts is never parsed as syntax.
func ftsTerms(text string) []string {
	var terms []string
	for _, f := range strings.Fields(text) {
		f = strings.Trim(f, `"'.,;:!?()`)
		if f == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return terms
}
