package index

import (
	"context"
	"os"
)

// Stats summarizes the indexed journal.
type Stats struct {
	DBPath        string          `json:"db_path"`
	DBSizeBytes   int64           `json:"db_size_bytes"`
	Entries       int             `json:"entries"`
	Chunks        int             `json:"chunks"`
	Goals         int             `json:"goals"`
	ProgressNotes int             `json:"progress_notes"`
	HostCalls     int             `json:"host_calls"`
	Failures      int             `json:"failures"`
	Categories    []CategoryStats `json:"categories"`
}

// CategoryStats holds per-category routing counts.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Failures int    `json:"failures"`
}

// Stats returns index statistics.
func (ix *Index) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: ix.path}

	if info, err := os.Stat(ix.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	err := ix.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(kind = 'goal'), 0),
		       COALESCE(SUM(kind = 'progress'), 0),
		       COALESCE(SUM(calls), 0),
		       COALESCE(SUM(status = 'failure'), 0)
		FROM entries`).Scan(&st.Entries, &st.Goals, &st.ProgressNotes, &st.HostCalls, &st.Failures)
	if err != nil {
		return st, err
	}
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&st.Chunks); err != nil {
		return st, err
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt, COALESCE(SUM(status = 'failure'), 0)
		FROM entries WHERE kind = 'route'
		GROUP BY category ORDER BY cnt DESC, category`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryStats
		if err := rows.Scan(&c.Category, &c.Count, &c.Failures); err != nil {
			return st, err
		}
		st.Categories = append(st.Categories, c)
	}
	return st, rows.Err()
}
