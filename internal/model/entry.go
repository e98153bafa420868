package model

import (
	"slices"
	"time"
)

// Entry kinds.
const (
	KindRoute    = "route"
	KindGoal     = "goal"
	KindProgress = "progress"
)

// Entry is one append-only record of the memory journal.
type Entry struct {
	ID        int64          `json:"id"`
	RequestID string         `json:"request_id,omitempty"`
	Kind      string         `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Prompt    string         `json:"prompt,omitempty"`
	Category  Category       `json:"category"`
	Params    Params         `json:"params"`
	Action    *ActionSummary `json:"action,omitempty"`
	Result    *Result        `json:"result,omitempty"`
	Note      string         `json:"note,omitempty"`
	Goal      string         `json:"goal,omitempty"`
	GoalID    int64          `json:"goal_id,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Params = e.Params.Clone()
	if e.Action != nil {
		a := *e.Action
		a.Ops = slices.Clone(a.Ops)
		if a.Journal != nil {
			d := *a.Journal
			a.Journal = &d
		}
		e.Action = &a
	}
	if e.Result != nil {
		r := *e.Result
		r.Affected = slices.Clone(r.Affected)
		e.Result = &r
	}
	return e
}

// ProgressNote is a progress line recorded against the active goal.
type ProgressNote struct {
	EntryID int64     `json:"entry_id"`
	At      time.Time `json:"at"`
	Text    string    `json:"text"`
}

// JournalGoal is the active daily goal with its progress notes keyed by date (YYYY-MM-DD).
type JournalGoal struct {
	EntryID  int64                     `json:"entry_id"`
	Text     string                    `json:"text"`
	SetAt    time.Time                 `json:"set_at"`
	Progress map[string][]ProgressNote `json:"progress"`
}

// DateKey is the layout used to key progress notes.
const DateKey = "2006-01-02"
