package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/generate"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/model"
)

func generated(t *testing.T, c model.Category, prompt string, snap host.Snapshot) model.Action {
	t.Helper()
	a, err := generate.Generate(generate.Request{Category: c, Prompt: prompt, Params: extract.Extract(prompt), Snapshot: snap})
	require.NoError(t, err)
	return a
}

func TestExecuteRunsWithoutGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	sim := host.NewSim()
	a := generated(t, model.MeshCreate, "create two red metallic spheres", sim.Snapshot())
	res := New(sim).Execute(a)

	require.True(t, res.OK(), res.Detail)
	assert.Equal(t, []string{"Generated_Sphere", "Generated_Sphere.001", "Generated_Material_Metallic_Red"}, res.Affected)
	assert.Equal(t, 2, sim.Summary().Meshes)

	o, ok := sim.Object("Generated_Sphere.001")
	require.True(t, ok)
	assert.Equal(t, "Generated_Material_Metallic_Red", o.Material)
	assert.Equal(t, model.Vec3{2, 0, 0}, o.Location)
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	sim := host.NewSim()
	before := sim.Summary().Objects
	a := model.NewAction(model.MeshCreate, []model.Call{
		model.NewCall(host.OpCreatePrimitive, "name", "A", "shape", "cube", "size", 1.0, "location", model.Vec3{}),
		model.NewCall(host.OpAssignMaterial, "object", "Ghost", "material", "Nope"),
		model.NewCall(host.OpCreatePrimitive, "name", "B", "shape", "cube", "size", 1.0, "location", model.Vec3{}),
	})

	res := New(sim).Execute(a)

	assert.Equal(t, model.StatusFailure, res.Status)
	assert.Equal(t, model.KindExecutionFailure, res.Kind)
	assert.Contains(t, res.Message, "Step 2 of 3")
	assert.Contains(t, res.Detail, "no such object")
	assert.Equal(t, []string{"A"}, res.Affected)
	assert.Equal(t, 1, res.Calls)
	assert.Equal(t, before+1, sim.Summary().Objects, "first call's side effect stays, third never runs")
}

type panicky struct{ *host.Sim }

func (panicky) ShadeSmooth(string) error { panic("smooth exploded") }

func TestExecuteRecoversHostPanic(t *testing.T) {
	scene := panicky{host.NewSim()}
	a := model.NewAction(model.MeshCreate, []model.Call{
		model.NewCall(host.OpCreatePrimitive, "name", "A", "shape", "cube", "size", 1.0, "location", model.Vec3{}),
		model.NewCall(host.OpShadeSmooth, "object", model.Ref(0)),
	})

	var res model.Result
	require.NotPanics(t, func() { res = New(scene).Execute(a) })
	assert.False(t, res.OK())
	assert.Contains(t, res.Detail, "host panic: smooth exploded")
}

func TestExecuteRejectsBadCalls(t *testing.T) {
	tests := []struct {
		name   string
		call   model.Call
		detail string
	}{
		{"unknown op", model.NewCall("delete_everything"), "unknown operation"},
		{"missing arg", model.NewCall(host.OpShadeSmooth), "missing argument"},
		{"wrong type", model.NewCall(host.OpSetFrameRange, "start", "one", "end", 2), "want int"},
		{"forward ref", model.NewCall(host.OpShadeSmooth, "object", model.Ref(3)), "has not run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(host.NewSim()).Execute(model.NewAction(model.MeshCreate, []model.Call{tt.call}))
			assert.False(t, res.OK())
			assert.Contains(t, res.Detail, tt.detail)
		})
	}
}

func TestRunStepHonorsBudget(t *testing.T) {
	sim := host.NewSim()
	for _, n := range []string{"A", "B", "C", "D", "E"} {
		_, err := sim.CreatePrimitive(n, model.ShapeCube, 1, model.Vec3{})
		require.NoError(t, err)
	}
	require.NoError(t, sim.Select())
	a := generated(t, model.SceneLayout, "arrange on a grid", sim.Snapshot())
	require.Equal(t, 5, a.Len())

	r := New(sim).Start(a)
	assert.False(t, r.Step(2))
	assert.False(t, r.Done())
	assert.False(t, r.Step(2))
	assert.True(t, r.Step(2))
	assert.True(t, r.Step(2), "finished runs stay finished")
	assert.Equal(t, 3, r.Ticks())
	assert.True(t, r.Result().OK())

	o, _ := sim.Object("D")
	assert.Equal(t, model.Vec3{0, 3, 0}, o.Location)
}

func TestRunResultBeforeDone(t *testing.T) {
	a := generated(t, model.MeshCreate, "create three cubes", host.Snapshot{})
	r := New(host.NewSim()).Start(a)
	assert.False(t, r.Result().OK())
}

func TestExecuteEmptyAction(t *testing.T) {
	res := New(host.NewSim()).Execute(model.NewJournalAction(model.JournalDirective{Kind: model.DirectiveShow}))
	assert.True(t, res.OK())
	assert.Equal(t, "Nothing to execute", res.Message)
}
