package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParamsKeys(t *testing.T) {
	p := Params{Shape: ptr("sphere"), Location: &Vec3{1, 2, 3}}
	assert.Equal(t, []string{"location", "shape"}, p.Keys())
	assert.False(t, p.Empty())
	assert.True(t, Params{}.Empty())
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, Params{Shape: ptr("cube"), Size: ptr(2.0), Count: ptr(3)}.Validate())

	err := Params{Shape: ptr("pyramid"), Size: ptr(-1.0), Location: &Vec3{math.NaN(), 0, 0}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape")
	assert.Contains(t, err.Error(), "size")
	assert.Contains(t, err.Error(), "location")
}

func TestCategoryJSON(t *testing.T) {
	b, err := json.Marshal(Animate)
	require.NoError(t, err)
	assert.Equal(t, `"animate"`, string(b))

	var c Category
	require.NoError(t, json.Unmarshal([]byte(`"journal_entry"`), &c))
	assert.Equal(t, JournalEntry, c)

	// Categories from a newer schema decode as Unknown instead of failing.
	require.NoError(t, json.Unmarshal([]byte(`"sculpt"`), &c))
	assert.Equal(t, Unknown, c)
}

func TestActionIsImmutable(t *testing.T) {
	calls := []Call{NewCall("create_primitive", "shape", "cube", "size", 1.0)}
	a := NewAction(MeshCreate, calls)

	calls[0].Args[0].Value = "sphere"
	got := a.Calls()
	got[0].Op = "tampered"

	c := a.Call(0)
	assert.Equal(t, "create_primitive", c.Op)
	shape, err := c.String("shape")
	require.NoError(t, err)
	assert.Equal(t, "cube", shape)
}

func TestCallTypedArgs(t *testing.T) {
	c := NewCall("insert_keyframe", "object", "Cube", "frame", 60, "value", Vec3{0, 0, 2})

	frame, err := c.Int("frame")
	require.NoError(t, err)
	assert.Equal(t, 60, frame)

	f, err := c.Float("frame")
	require.NoError(t, err)
	assert.Equal(t, 60.0, f)

	_, err = c.Vec3("object")
	assert.ErrorContains(t, err, "want vec3")

	_, err = c.String("missing")
	assert.ErrorContains(t, err, "missing argument")

	c2 := c.With("frame", 120)
	n, _ := c2.Int("frame")
	assert.Equal(t, 120, n)
	n, _ = c.Int("frame")
	assert.Equal(t, 60, n)
}
