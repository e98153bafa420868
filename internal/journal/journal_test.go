package journal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/forgecore/internal/model"
)

func tempStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.json"), opts...)
	require.NoError(t, err)
	return s
}

func route(prompt string) model.Entry {
	return model.Entry{Kind: model.KindRoute, Prompt: prompt, Category: model.MeshCreate}
}

func TestAppendThenRecent(t *testing.T) {
	s := tempStore(t)
	for _, p := range []string{"a", "b", "c"} {
		_, err := s.Append(route(p))
		require.NoError(t, err)
	}
	e, err := s.Append(route("create a cube"))
	require.NoError(t, err)

	got := s.Recent(1)
	require.Len(t, got, 1)
	assert.Equal(t, e, got[0])
	assert.Equal(t, int64(4), e.ID)
	assert.False(t, e.Timestamp.IsZero())

	all := s.Recent(10)
	require.Len(t, all, 4, "never more than exist")
	assert.Equal(t, "c", all[1].Prompt, "newest first")
	assert.Empty(t, s.Recent(0))
}

func TestReturnedEntriesDoNotAliasTheStore(t *testing.T) {
	s := tempStore(t)
	shape := "cube"
	res := model.Succeeded("Executed 1 operation", "Generated_Cube")
	in := route("create a cube")
	in.Params.Shape = &shape
	in.Action = &model.ActionSummary{Calls: 1, Ops: []string{"create_primitive"}}
	in.Result = &res
	appended, err := s.Append(in)
	require.NoError(t, err)

	shape = "sphere"
	res.Affected[0] = "caller"
	appended.Result.Message = "appended"
	got := s.Recent(1)[0]
	got.Result.Status = model.StatusFailure
	got.Result.Affected[0] = "recent"
	got.Action.Ops[0] = "delete_everything"
	*got.Params.Shape = "torus"
	all := s.All()
	all[0].Result.Message = "all"

	want := s.Recent(1)[0]
	assert.Equal(t, model.StatusSuccess, want.Result.Status)
	assert.Equal(t, "Executed 1 operation", want.Result.Message)
	assert.Equal(t, []string{"Generated_Cube"}, want.Result.Affected)
	assert.Equal(t, []string{"create_primitive"}, want.Action.Ops)
	assert.Equal(t, "cube", *want.Params.Shape)
}

func TestIDsIncreaseAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	s, err := Open(path)
	require.NoError(t, err)
	var last int64
	for i := 0; i < 3; i++ {
		e, err := s.Append(route("x"))
		require.NoError(t, err)
		last = e.ID
	}

	s2, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s2.Len())
	e, err := s2.Append(route("after restart"))
	require.NoError(t, err)
	assert.Greater(t, e.ID, last)
}

func TestLastIDRecomputedWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	raw := `{"records":[{"id":7,"kind":"route","timestamp":"2026-01-02T03:04:05Z","category":"mesh_create","params":{}}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	e, err := s.Append(route("next"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), e.ID)
}

func TestExternalModificationFailsLoudly(t *testing.T) {
	s := tempStore(t)
	_, err := s.Append(route("mine"))
	require.NoError(t, err)

	foreign := `{"schema":1,"last_id":99,"records":[]}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(foreign), 0o644))

	_, err = s.Append(route("lost?"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternallyModified))
	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, s.Path(), serr.Path)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, foreign, string(data), "foreign content is not overwritten")
	assert.Equal(t, 1, s.Len(), "failed append leaves memory untouched")

	require.NoError(t, s.Reload())
	e, err := s.Append(route("after reload"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.ID)
}

func TestFileCreatedByOtherProcessIsDetected(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"records":[]}`), 0o644))
	_, err := s.Append(route("x"))
	assert.ErrorIs(t, err, ErrExternallyModified)
}

func TestUnknownFieldsAreIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	raw := `{"schema":3,"last_id":1,"compaction":{"every":10},"records":[
		{"id":1,"kind":"route","timestamp":"2026-01-02T03:04:05Z","category":"animate","params":{},"embedding":[0.1,0.2],"prompt":"spin it"}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	got := s.Recent(1)
	require.Len(t, got, 1)
	assert.Equal(t, "spin it", got[0].Prompt)
	assert.Equal(t, model.Animate, got[0].Category)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Open(path)
	var serr *StoreError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, "decode", serr.Op)
}

func TestGoalAndProgress(t *testing.T) {
	day1 := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	now := day1
	s := tempStore(t, WithClock(func() time.Time { return now }))

	_, err := s.AddProgressNote("too early")
	assert.ErrorIs(t, err, ErrNoGoal)
	_, err = s.Goal()
	assert.ErrorIs(t, err, ErrNoGoal)

	g, err := s.SetGoal("finish material system")
	require.NoError(t, err)
	_, err = s.AddProgressNote("principled graph done")
	require.NoError(t, err)
	now = day1.Add(24 * time.Hour)
	p, err := s.AddProgressNote("glass preset tuned")
	require.NoError(t, err)
	assert.Equal(t, g.ID, p.GoalID)

	jg, err := s.Goal()
	require.NoError(t, err)
	assert.Equal(t, "finish material system", jg.Text)
	assert.Equal(t, g.ID, jg.EntryID)
	require.Len(t, jg.Progress["2026-10-14"], 1)
	assert.Equal(t, "principled graph done", jg.Progress["2026-10-14"][0].Text)
	require.Len(t, jg.Progress["2026-10-15"], 1)

	// A new goal starts with no progress.
	_, err = s.SetGoal("ship exporter")
	require.NoError(t, err)
	jg, err = s.Goal()
	require.NoError(t, err)
	assert.Equal(t, "ship exporter", jg.Text)
	assert.Empty(t, jg.Progress)

	_, err = s.SetGoal("")
	assert.Error(t, err)
}

func TestWrittenFileShape(t *testing.T) {
	s := tempStore(t)
	_, err := s.SetGoal("g")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(Schema), doc["schema"])
	assert.Equal(t, float64(1), doc["last_id"])
	assert.Len(t, doc["records"], 1)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".journal-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}
